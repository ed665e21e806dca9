package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/slackprep/internal/cleanup"
)

func cleanupCmd(g *globalFlags) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "cleanup [export-dir]",
		Short: "Remove unreferenced uploads and metadata files from an export",
		Long: `Deletes __uploads/<id> folders no message references, the metadata files
channels.json, dms.json, groups.json and mpims.json, then empty directories.
Nothing is removed without --apply.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			root := cfg.InputDir
			if len(args) == 1 {
				root = args[0]
			}

			rep, err := cleanup.Run(root, apply, log)
			if err != nil {
				return err
			}

			verb := "Would remove"
			if rep.Applied {
				verb = "Removed"
			}
			for _, a := range rep.Actions {
				fmt.Printf("%s %-9s %s (%s)\n", verb, a.Kind, a.Path, humanize.Bytes(uint64(a.Bytes)))
			}
			fmt.Printf("%s %d entries, %s\n", verb, len(rep.Actions), humanize.Bytes(uint64(rep.Bytes())))
			if !rep.Applied && len(rep.Actions) > 0 {
				fmt.Println("Dry run. Re-run with --apply to delete.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Actually delete (default is a dry run)")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/slackprep/internal/search"
	"github.com/Zuo-Peng/slackprep/internal/tui"
)

func listCmd(g *globalFlags) *cobra.Command {
	var opts search.Options
	var noRefresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse indexed conversations by recent activity",
		Long:  `Opens a TUI panel showing all indexed conversations, most recently active first. Type to search their messages. Outside a terminal the list is printed as TSV.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}

			db, err := openIndex(cfg, log, !noRefresh)
			if err != nil {
				return err
			}
			defer db.Close()

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunList(db, opts)
			}

			results, err := search.ListAll(db, opts)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
					r.ConvKey, r.Timestamp, r.Kind, tsvField(r.Name), tsvField(r.Summary))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Filter by conversation kind (channel/dm/group)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Filter conversations active since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max results (0 = no limit)")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "List the existing index without updating it")

	return cmd
}

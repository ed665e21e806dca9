package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/slackprep/internal/index"
)

func indexCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Index the export's normalized messages for search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Indexing %s into %s\n", cfg.InputDir, cfg.DBPath)

			stats, err := refreshIndex(db, cfg, log)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}

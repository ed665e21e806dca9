package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/slackprep/internal/conversation"
	"github.com/Zuo-Peng/slackprep/internal/index"
	"github.com/Zuo-Peng/slackprep/internal/scan"
)

func doctorCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify export, DB, FTS5, and show stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load()
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			if cfg.Source != "" {
				fmt.Printf("  File: %s\n", cfg.Source)
			} else {
				fmt.Println("  File: (defaults)")
			}
			fmt.Printf("  Format: %s, attachments: %s\n", cfg.Format, cfg.Attachments)

			fmt.Println("\n=== Export ===")
			checkDir("Input", cfg.InputDir)
			checkDir("Output", cfg.OutputDir)

			if exp, err := scan.ScanExport(cfg.InputDir); err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				if _, err := os.Stat(exp.UsersPath()); err != nil {
					fmt.Printf("  %s: NOT FOUND\n", scan.UsersFile)
				} else {
					fmt.Printf("  %s: OK\n", scan.UsersFile)
				}
				counts := make(map[conversation.Kind]int)
				for _, name := range exp.Conversations() {
					kind, _ := conversation.Classify(name)
					counts[kind]++
				}
				for _, k := range conversation.Kinds {
					fmt.Printf("  %-16s %d\n", k.Plural()+":", counts[k])
				}
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'slackprep index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			convCount, err := db.ConversationCount()
			if err != nil {
				return fmt.Errorf("count conversations: %w", err)
			}
			msgCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			fmt.Printf("  Conversations: %d\n", convCount)
			fmt.Printf("  Messages:      %d\n", msgCount)
			if runID, err := db.GetMeta("last_run_id"); err == nil && runID != "" {
				fmt.Printf("  Last run:      %s\n", runID)
			}

			fmt.Println("\n=== FTS5 ===")
			ftsCount, err := db.FTSCount()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == msgCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", msgCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				fmt.Printf("\n=== DB Size: %s ===\n", humanize.Bytes(uint64(info.Size())))
			}
			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}

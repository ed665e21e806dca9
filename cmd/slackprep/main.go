package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:           "slackprep",
		Short:         "Reassemble Slack exports into LLM-ready transcripts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (.toml, .yaml; default ~/.config/slackprep/config.toml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug/info/warn/error)")

	rootCmd.AddCommand(reassembleCmd(&g))
	rootCmd.AddCommand(cleanupCmd(&g))
	rootCmd.AddCommand(indexCmd(&g))
	rootCmd.AddCommand(searchCmd(&g))
	rootCmd.AddCommand(listCmd(&g))
	rootCmd.AddCommand(previewCmd(&g))
	rootCmd.AddCommand(openCmd(&g))
	rootCmd.AddCommand(doctorCmd(&g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/slackprep/internal/open"
)

func openCmd(g *globalFlags) *cobra.Command {
	var hitMsgID int

	cmd := &cobra.Command{
		Use:   "open <conversation>",
		Short: "Open the message's export file in $EDITOR at the message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}

			db, err := openIndex(cfg, log, false)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenMessage(db, args[0], hitMsgID)
		},
	}

	cmd.Flags().IntVar(&hitMsgID, "hit", -1, "Message id to jump to")

	return cmd
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/slackprep/internal/search"
	"github.com/Zuo-Peng/slackprep/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorMagenta = "\033[1;35m"
	sColorDim     = "\033[2m"
)

func colorizeKind(kind string) string {
	switch kind {
	case "channel":
		return sColorBlue + kind + sColorReset
	case "dm":
		return sColorGreen + kind + sColorReset
	case "group":
		return sColorMagenta + kind + sColorReset
	default:
		return kind
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

// tsvField flattens s onto one TSV cell.
func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd(g *globalFlags) *cobra.Command {
	var opts search.Options
	var noRefresh bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed messages",
		Long: `Search indexed messages using FTS5 (substring match for CJK queries).
On a terminal this opens an interactive browser; otherwise output is TSV for
fzf integration:
  conversation, messageId, timestamp, kind, name, author, snippet

Example shell function:
  slf() {
    slackprep search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'slackprep preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(slackprep open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
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

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				// first two fields (conversation, message id) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\n",
					r.ConvKey,
					r.MsgID,
					sColorDim, r.Timestamp, sColorReset,
					colorizeKind(r.Kind),
					tsvField(r.Name),
					tsvField(r.UserName),
					colorizeSnippet(tsvField(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Filter by conversation kind (channel/dm/group)")
	cmd.Flags().StringVar(&opts.User, "user", "", "Filter by author id or display name")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Filter messages since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "Search the existing index without updating it")

	return cmd
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/slackprep/internal/config"
	"github.com/Zuo-Peng/slackprep/internal/materialize"
	"github.com/Zuo-Peng/slackprep/internal/parse"
	"github.com/Zuo-Peng/slackprep/internal/pipeline"
	"github.com/Zuo-Peng/slackprep/internal/render"
)

var defaultInputDir = filepath.Join("data", "input")

type reassembleFlags struct {
	output  string
	title   string
	noStats bool
}

func reassembleCmd(g *globalFlags) *cobra.Command {
	var f reassembleFlags
	var inputDir, outputDir, format, attachments string
	var absTS, allTurns bool
	var skipBots, skipChannels, skipContent, humanOnly bool

	cmd := &cobra.Command{
		Use:   "reassemble",
		Short: "Reassemble a Slack export into a Markdown or JSONL transcript",
		Long: `Reads users.json and every conversation directory of a Slack export and
writes one transcript. Without --output the file is auto-named in the output
directory, e.g. reassembled_grouped_2024-05-01T09-30.md. Use --output - to
write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("input-dir") {
				cfg.InputDir = inputDir
			}
			if flags.Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("format") {
				cfg.Format = format
			}
			if flags.Changed("attachments") {
				cfg.Attachments = attachments
			}
			if flags.Changed("absolute-timestamps") {
				cfg.AbsoluteTimestamps = absTS
			}
			if flags.Changed("all-turns") {
				cfg.AllTurns = allTurns
			}
			if flags.Changed("no-stats") {
				cfg.IncludeStats = !f.noStats
			}
			if flags.Changed("skip-bots") {
				cfg.Filters.SkipBots = skipBots
			}
			if flags.Changed("skip-automation-channels") {
				cfg.Filters.SkipAutomationChannels = skipChannels
			}
			if flags.Changed("skip-automated-content") {
				cfg.Filters.SkipAutomatedContent = skipContent
			}
			if flags.Changed("human-only") {
				cfg.Filters.HumanOnly = humanOnly
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ok, err := ensureInputDir(cfg.InputDir)
			if err != nil || !ok {
				return err
			}
			return reassemble(cfg, f, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&inputDir, "input-dir", "", "Slack export directory (default data/input)")
	flags.StringVarP(&f.output, "output", "o", "", "Output file path, - for stdout (auto-named if omitted)")
	flags.StringVar(&outputDir, "output-dir", "", "Directory for auto-named output (default data/output)")
	flags.StringVar(&format, "format", "", "Output format (markdown/jsonl)")
	flags.StringVar(&attachments, "attachments", "", "Place attachment files next to the output (none/copy/symlink)")
	flags.StringVar(&f.title, "title", render.DefaultTitle, "Markdown document title")
	flags.BoolVar(&absTS, "absolute-timestamps", false, "Use full YYYY-MM-DD HH:MM timestamps")
	flags.BoolVar(&allTurns, "all-turns", false, "Do not group consecutive messages by speaker")
	flags.BoolVar(&f.noStats, "no-stats", false, "Omit the statistics line from the Markdown header")
	flags.BoolVar(&skipBots, "skip-bots", false, "Drop messages authored by bot users")
	flags.BoolVar(&skipChannels, "skip-automation-channels", false, "Skip channels whose names look automated")
	flags.BoolVar(&skipContent, "skip-automated-content", false, "Drop messages with automated phrasing")
	flags.BoolVar(&humanOnly, "human-only", false, "Enable all three filters")

	return cmd
}

// ensureInputDir reports whether dir is ready to read. A missing default
// directory can be created interactively, after which there is nothing
// to reassemble yet.
func ensureInputDir(dir string) (bool, error) {
	_, err := os.Stat(dir)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, &parse.InputError{Path: dir, Err: err}
	}
	if dir != defaultInputDir || !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, &parse.InputError{Path: dir, Err: fmt.Errorf("input directory not found")}
	}

	fmt.Fprintf(os.Stderr, "Default input directory %q does not exist.\n", dir)
	if !confirm(os.Stdin, os.Stderr, "Would you like to create it?") {
		return false, fmt.Errorf("no input directory: use --input-dir or create %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	abs, _ := filepath.Abs(dir)
	fmt.Fprintf(os.Stderr, "Created input folder at: %s\n", abs)
	fmt.Fprintln(os.Stderr, "Add your Slack export (users.json and conversation folders) and re-run the command.")
	return false, nil
}

func reassemble(cfg *config.Config, f reassembleFlags, log *slog.Logger) error {
	exp, p, err := openExport(cfg, log)
	if err != nil {
		return err
	}

	res, err := p.Run(exp)
	if err != nil {
		return err
	}
	if len(res.Sections) == 0 {
		log.Warn("no conversations found", "input", cfg.InputDir)
	}
	log.Info("reassembled export", "stats", res.Stats.String())

	data, err := encode(cfg, f, res)
	if err != nil {
		return err
	}

	outDir := cfg.OutputDir
	if f.output == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	} else {
		path := f.output
		if path == "" {
			path = filepath.Join(cfg.OutputDir, outputName(cfg.Format, !cfg.AllTurns, cfg.AbsoluteTimestamps, time.Now()))
		}
		if err := writeAtomic(path, data); err != nil {
			return err
		}
		outDir = filepath.Dir(path)
		abs, _ := filepath.Abs(path)
		fmt.Fprintf(os.Stderr, "Transcript written to: %s (%s)\n", abs, humanize.Bytes(uint64(len(data))))
	}

	mode, err := materialize.ParseMode(cfg.Attachments)
	if err != nil {
		return err
	}
	if mode == materialize.None {
		return nil
	}
	m := materialize.Materializer{Mode: mode, ExportDir: exp.Root, OutputDir: outDir, Log: log}
	stats, err := m.Place(materialize.Descriptors(res))
	if err != nil {
		return fmt.Errorf("attachments: %w", err)
	}
	log.Info("placed attachments", "mode", mode, "stats", stats.String())
	return nil
}

func encode(cfg *config.Config, f reassembleFlags, res pipeline.Result) ([]byte, error) {
	if cfg.Format == config.FormatJSONL {
		var buf bytes.Buffer
		if err := render.WriteJSONL(&buf, res); err != nil {
			return nil, fmt.Errorf("render jsonl: %w", err)
		}
		return buf.Bytes(), nil
	}
	doc, _ := render.Document(res, render.DocumentOptions{
		Title:        f.title,
		Grouping:     !cfg.AllTurns,
		IncludeStats: cfg.IncludeStats,
	})
	return []byte(doc), nil
}

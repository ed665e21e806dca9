package render

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/slackprep/internal/conversation"
	"github.com/Zuo-Peng/slackprep/internal/pipeline"
	"github.com/Zuo-Peng/slackprep/internal/turn"
)

const DefaultTitle = "Slack Conversation Transcript"

type DocumentOptions struct {
	Title        string
	Grouping     bool // merge consecutive same-author messages into one turn
	IncludeStats bool
}

// TOCEntry points at a section of the rendered document.
type TOCEntry struct {
	Name     string
	Kind     conversation.Kind
	Position int // index into the emitted section list
	Anchor   string
}

// Document renders res as a Markdown transcript with a table of contents.
func Document(res pipeline.Result, opts DocumentOptions) (string, []TOCEntry) {
	var body strings.Builder
	var toc []TOCEntry
	anchors := make(map[string]int)

	for i, sec := range res.Sections {
		heading := fmt.Sprintf("%s: %s", sec.Kind, sec.Name)
		anchor := Slug(heading)
		if n := anchors[anchor]; n > 0 {
			anchors[anchor]++
			anchor = fmt.Sprintf("%s-%d", anchor, n)
		} else {
			anchors[anchor] = 1
		}
		toc = append(toc, TOCEntry{Name: sec.Name, Kind: sec.Kind, Position: i, Anchor: anchor})

		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString("## " + heading + "\n\n")
		body.WriteString(strings.Join(turnBlocks(sec, opts.Grouping), "\n"))
	}

	var b strings.Builder
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	b.WriteString("# " + title + "\n\n")
	if opts.IncludeStats {
		b.WriteString(StatsLine(res.Stats) + "\n\n")
	}
	b.WriteString(tableOfContents(toc))
	b.WriteString("---\n\n")
	b.WriteString(body.String())

	return b.String(), toc
}

// turnBlocks aggregates a section's messages into rendered turns.
func turnBlocks(sec pipeline.Section, grouping bool) []string {
	agg := turn.NewAggregator(grouping)
	for _, m := range sec.Messages {
		agg.Advance(m.Author, m.Timestamp, m.Text)
	}
	agg.Flush()

	var blocks []string
	for _, t := range agg.Turns() {
		blocks = append(blocks, fmt.Sprintf("[%s — %s]\n%s\n\n---\n", t.Author, t.Timestamp, t.Body()))
	}
	return blocks
}

func tableOfContents(toc []TOCEntry) string {
	var b strings.Builder
	b.WriteString("## Table of Contents\n\n")
	for _, k := range conversation.Kinds {
		var items []string
		for _, e := range toc {
			if e.Kind == k {
				items = append(items, fmt.Sprintf("- [%s](#%s)", e.Name, e.Anchor))
			}
		}
		if len(items) == 0 {
			continue
		}
		b.WriteString("### " + k.Plural() + "\n\n")
		b.WriteString(strings.Join(items, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

// StatsLine summarizes a run in one italic Markdown line.
func StatsLine(s pipeline.Stats) string {
	return fmt.Sprintf("_Channels: %d · Direct Messages: %d · Group Messages: %d · Messages: %d · "+
		"Automation channels skipped: %d · Bot messages dropped: %d · Automated messages dropped: %d_",
		s.Channels, s.DirectMessages, s.GroupMessages, s.Messages,
		s.SkippedChannels, s.DroppedBots, s.DroppedAutomated)
}

// Slug derives a heading anchor: lowercase, colons removed, spaces as hyphens.
func Slug(heading string) string {
	s := strings.ToLower(heading)
	s = strings.ReplaceAll(s, ":", "")
	return strings.ReplaceAll(s, " ", "-")
}

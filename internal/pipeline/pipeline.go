// Package pipeline reassembles exported conversations into normalized
// message streams: filtering, text normalization and attachment
// classification.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Zuo-Peng/slackprep/internal/attach"
	"github.com/Zuo-Peng/slackprep/internal/conversation"
	"github.com/Zuo-Peng/slackprep/internal/filter"
	"github.com/Zuo-Peng/slackprep/internal/normalize"
	"github.com/Zuo-Peng/slackprep/internal/parse"
	"github.com/Zuo-Peng/slackprep/internal/users"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

type Options struct {
	AbsoluteTimestamps bool
	Filters            filter.Options
}

// Message is a normalized message.
type Message struct {
	UserID     string
	Author     string
	Time       time.Time
	Timestamp  string // date, or date and time with AbsoluteTimestamps
	RawText    string
	Text       string // normalized body plus inline attachment references
	Files      []attach.Descriptor
	SourceFile string
}

// Section is one conversation directory's surviving messages.
type Section struct {
	DirName  string
	Name     string
	Kind     conversation.Kind
	Messages []Message
}

type Result struct {
	Sections []Section
	Stats    Stats
}

type Pipeline struct {
	users   *users.Directory
	filters *filter.Set
	opts    Options
	log     *slog.Logger
}

// New validates the filter configuration against dir before any
// conversation is read.
func New(dir *users.Directory, opts Options, log *slog.Logger) (*Pipeline, error) {
	if dir == nil {
		return nil, fmt.Errorf("pipeline: nil user directory")
	}
	filters, err := filter.New(opts.Filters, dir.BotIDs())
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{users: dir, filters: filters, opts: opts, log: log}, nil
}

// Run processes every conversation of src in order. Any input error aborts
// the run.
func (p *Pipeline) Run(src Source) (Result, error) {
	var res Result
	for _, name := range src.Conversations() {
		sec, ok, err := p.Process(src, name, &res.Stats)
		if err != nil {
			return Result{}, err
		}
		if ok {
			res.Sections = append(res.Sections, sec)
		}
	}
	return res, nil
}

// Process reassembles a single conversation, accumulating into stats. It
// reports false when a section filter skipped the conversation; skipped
// conversations are never read.
func (p *Pipeline) Process(src Source, name string, stats *Stats) (Section, bool, error) {
	if reason, drop := p.filters.DropSection(name); drop {
		stats.addDrop(reason)
		p.log.Info("skipping conversation", "conversation", name, "reason", reason)
		return Section{}, false, nil
	}

	files, err := src.Files(name)
	if err != nil {
		return Section{}, false, fmt.Errorf("load conversation %s: %w", name, err)
	}

	kind, display := conversation.Classify(name)
	sec := Section{DirName: name, Name: display, Kind: kind}
	stats.addKind(kind)

	for _, f := range files {
		for _, raw := range f.Messages {
			if reason, drop := p.filters.DropMessage(raw); drop {
				stats.addDrop(reason)
				continue
			}
			sec.Messages = append(sec.Messages, p.message(raw, f.Path, stats))
		}
	}
	stats.Messages += len(sec.Messages)

	p.log.Debug("processed conversation", "conversation", name, "kind", kind.Key(), "messages", len(sec.Messages))
	return sec, true, nil
}

func (p *Pipeline) message(raw parse.RawMessage, path string, stats *Stats) Message {
	t := raw.TS.Time()
	layout := dateLayout
	if p.opts.AbsoluteTimestamps {
		layout = dateTimeLayout
	}

	m := Message{
		UserID:     raw.User,
		Author:     p.users.Name(raw.User),
		Time:       t,
		Timestamp:  t.Format(layout),
		RawText:    raw.Text,
		Text:       normalize.Text(raw.Text, p.users),
		Files:      make([]attach.Descriptor, 0, len(raw.Files)),
		SourceFile: path,
	}

	for _, ref := range raw.Files {
		inline, d, err := attach.Classify(ref)
		if err != nil {
			stats.DroppedAttachments++
			p.log.Debug("dropping attachment reference", "file", path, "error", err)
			continue
		}
		if m.Text != "" {
			m.Text += "\n"
		}
		m.Text += inline
		m.Files = append(m.Files, d)
	}
	return m
}

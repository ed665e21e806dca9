// Package filter holds the predicates that drop automated conversations and
// messages before normalization.
package filter

import (
	"strings"

	"github.com/Zuo-Peng/slackprep/internal/parse"
)

// Reason names the filter that dropped a section or message.
type Reason string

const (
	ReasonAutomationChannel Reason = "automation_channel"
	ReasonBot               Reason = "bot"
	ReasonAutomatedContent  Reason = "automated_content"
)

var automationKeywords = []string{
	"notification", "alert", "test", "ci", "deploy", "build",
	"monitor", "status", "bot", "automation", "nightly",
}

// The last two entries are rendered artifacts. Matching runs on raw text,
// so they only hit messages that literally contain them.
var automatedPhrases = []string{
	"deployment started",
	"deployment succeeded",
	"deployment failed",
	"deployed to production",
	"deployed to staging",
	"build succeeded",
	"build failed",
	"build passed",
	"pipeline succeeded",
	"pipeline failed",
	"ci run",
	"tests passed",
	"tests failed",
	"[alert]",
	"alert triggered",
	"alert resolved",
	"daily report",
	"weekly report",
	"automated report",
	"has joined the channel",
	"[emoji:white_check_mark]",
	"[emoji:rotating_light]",
}

// Options toggles the filters. HumanOnly enables all three.
type Options struct {
	SkipBots               bool `toml:"skip_bots" yaml:"skip_bots"`
	SkipAutomationChannels bool `toml:"skip_automation_channels" yaml:"skip_automation_channels"`
	SkipAutomatedContent   bool `toml:"skip_automated_content" yaml:"skip_automated_content"`
	HumanOnly              bool `toml:"human_only" yaml:"human_only"`
}

// Effective expands HumanOnly into the three individual toggles.
func (o Options) Effective() Options {
	if o.HumanOnly {
		o.SkipBots = true
		o.SkipAutomationChannels = true
		o.SkipAutomatedContent = true
	}
	return o
}

// SectionFilter drops a whole conversation by directory name.
type SectionFilter interface {
	Reason() Reason
	DropSection(dirName string) bool
}

// MessageFilter drops a single raw message.
type MessageFilter interface {
	Reason() Reason
	DropMessage(m parse.RawMessage) bool
}

// Set is an ordered list of enabled filters.
type Set struct {
	Sections []SectionFilter
	Messages []MessageFilter
}

// New builds the enabled filters. Enabling the bot filter without a bot-id
// set is a configuration error.
func New(opts Options, bots map[string]struct{}) (*Set, error) {
	opts = opts.Effective()
	s := &Set{}

	if opts.SkipAutomationChannels {
		s.Sections = append(s.Sections, AutomationChannel{})
	}
	if opts.SkipBots {
		if bots == nil {
			return nil, &ConfigError{Msg: "bot filter enabled but no bot-id set was loaded"}
		}
		s.Messages = append(s.Messages, Bot{IDs: bots})
	}
	if opts.SkipAutomatedContent {
		s.Messages = append(s.Messages, AutomatedContent{})
	}
	return s, nil
}

// DropSection reports the first section filter that rejects dirName.
func (s *Set) DropSection(dirName string) (Reason, bool) {
	if s == nil {
		return "", false
	}
	for _, f := range s.Sections {
		if f.DropSection(dirName) {
			return f.Reason(), true
		}
	}
	return "", false
}

// DropMessage reports the first message filter that rejects m.
func (s *Set) DropMessage(m parse.RawMessage) (Reason, bool) {
	if s == nil {
		return "", false
	}
	for _, f := range s.Messages {
		if f.DropMessage(m) {
			return f.Reason(), true
		}
	}
	return "", false
}

type AutomationChannel struct{}

func (AutomationChannel) Reason() Reason { return ReasonAutomationChannel }

func (AutomationChannel) DropSection(dirName string) bool {
	return containsAny(strings.ToLower(dirName), automationKeywords)
}

type Bot struct {
	IDs map[string]struct{}
}

func (Bot) Reason() Reason { return ReasonBot }

func (b Bot) DropMessage(m parse.RawMessage) bool {
	_, ok := b.IDs[m.User]
	return ok
}

// AutomatedContent matches against the raw, pre-normalization text.
type AutomatedContent struct{}

func (AutomatedContent) Reason() Reason { return ReasonAutomatedContent }

func (AutomatedContent) DropMessage(m parse.RawMessage) bool {
	return containsAny(strings.ToLower(m.Text), automatedPhrases)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Package tui is the interactive search and conversation browser.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/slackprep/internal/index"
	"github.com/Zuo-Peng/slackprep/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeSearch tuiMode = iota
	modeList
)

type model struct {
	db          *index.DB
	searchOpts  search.Options
	mode        tuiMode
	query       string
	results     []search.Result
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // "convKey:msgID" of the rendered preview
	width       int
	height      int
	ready       bool
	quitting    bool
	chosen      *search.Result
}

func initialModel(db *index.DB, query string, opts search.Options) model {
	ti := textinput.New()
	ti.Placeholder = "Search messages..."
	ti.Focus()
	ti.SetValue(query)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		db:          db,
		searchOpts:  opts,
		query:       query,
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the TUI and blocks until it exits.
// If the user picks a result, its text is copied to the clipboard.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(db, initialModel(db, query, opts))
}

// RunList starts the TUI in list mode, showing all conversations by recent activity.
func RunList(db *index.DB, opts search.Options) error {
	m := initialModel(db, "", opts)
	m.mode = modeList
	m.filterInput.Placeholder = "Filter..."
	return run(db, m)
}

func run(db *index.DB, m model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if fm := final.(model); fm.chosen != nil {
		return copyResult(db, *fm.chosen)
	}
	return nil
}

// copyResult copies the chosen message, or the conversation directory for
// a conversation-level result. Without a clipboard the text is printed.
func copyResult(db *index.DB, r search.Result) error {
	text, err := selectionText(db, r)
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Println(text)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", firstLine(text))
	return nil
}

func selectionText(db *index.DB, r search.Result) (string, error) {
	if r.MsgID < 0 {
		conv, err := db.GetConversationByKey(r.ConvKey)
		if err != nil {
			return "", fmt.Errorf("get conversation: %w", err)
		}
		if conv == nil {
			return "", fmt.Errorf("conversation not found: %s", r.ConvKey)
		}
		return conv.DirPath, nil
	}
	msg, err := db.GetMessage(r.ConvKey, r.MsgID)
	if err != nil {
		return "", fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return "", fmt.Errorf("message not found: %s#%d", r.ConvKey, r.MsgID)
	}
	return fmt.Sprintf("[%s — %s]\n%s", msg.UserName, strings.Replace(msg.Ts, "T", " ", 1), msg.Text), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// selected returns the result under the cursor.
func (m model) selected() (search.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mode == modeList || m.query != "" {
		cmds = append(cmds, m.fetch(m.query))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case debounceTickMsg:
		// stale ticks are dropped; only the latest query is fetched
		if msg.query != m.query {
			return m, nil
		}
		return m, m.fetch(msg.query)
	case resultsMsg:
		return m.applyResults(msg)
	case previewRenderedMsg:
		return m.applyPreview(msg), nil
	}
	return m, nil
}

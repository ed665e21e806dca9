package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/slackprep/internal/search"
)

type resultsMsg struct {
	query   string
	results []search.Result
	err     error
}

type debounceTickMsg struct {
	query string
}

func (m model) resize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.preview = newViewport(m.previewWidth(), m.panelHeight())
	// width changed, so the current preview must be re-wrapped
	m.previewKey = ""
	return m, m.loadCurrentPreview()
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	half := m.panelHeight() / 2
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Enter):
		if r, ok := m.selected(); ok {
			m.chosen = &r
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case key.Matches(msg, keys.Kind):
		m.searchOpts.Kind = nextKind(m.searchOpts.Kind)
		return m, m.fetch(m.query)
	case key.Matches(msg, keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, keys.PreviewUp):
		m.preview.LineUp(half)
		return m, nil
	case key.Matches(msg, keys.PreviewDn):
		m.preview.LineDown(half)
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.preview.LineUp(m.panelHeight())
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.preview.LineDown(m.panelHeight())
		return m, nil
	}

	// everything else edits the query
	var cmds []tea.Cmd
	var tiCmd tea.Cmd
	m.filterInput, tiCmd = m.filterInput.Update(msg)
	cmds = append(cmds, tiCmd)
	if q := m.filterInput.Value(); q != m.query {
		m.query = q
		cmds = append(cmds, debounce(q))
	}
	return m, tea.Batch(cmds...)
}

func (m model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.results) {
		return m, nil
	}
	m.cursor = next
	m.adjustListScroll(m.panelHeight())
	return m, m.loadCurrentPreview()
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.results) == 0 {
		return m, nil
	}

	region, item := m.hitTest(msg.X, msg.Y)
	switch region {
	case regionList:
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			m.listOffset = max(m.listOffset-1, 0)
		case msg.Button == tea.MouseButtonWheelDown:
			maxOffset := max(len(m.results)-m.panelHeight()/linesPerItem, 0)
			m.listOffset = min(m.listOffset+1, maxOffset)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if item >= 0 && item < len(m.results) && item != m.cursor {
				return m.moveCursor(item - m.cursor)
			}
		}
		return m, nil
	case regionPreview:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) applyResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	if msg.query != m.query {
		return m, nil
	}
	m.cursor = 0
	m.listOffset = 0
	m.previewKey = ""
	if msg.err != nil {
		m.results = nil
		m.preview.SetContent("Error: " + msg.err.Error())
		return m, nil
	}
	m.results = msg.results
	if len(m.results) == 0 {
		m.preview.SetContent("")
		return m, nil
	}
	return m, m.loadCurrentPreview()
}

func (m model) applyPreview(msg previewRenderedMsg) model {
	got := previewCacheKey(msg.convKey, msg.msgID)
	r, ok := m.selected()
	if got == m.previewKey || (ok && got != previewCacheKey(r.ConvKey, r.MsgID)) {
		// duplicate or stale
		return m
	}
	switch {
	case msg.err != nil:
		m.preview.SetContent("Preview error: " + msg.err.Error())
	case msg.hitLine > 0:
		m.preview.SetContent(msg.content)
		m.preview.SetYOffset(msg.hitLine)
	default:
		m.preview.SetContent(msg.content)
		m.preview.GotoTop()
	}
	m.previewKey = got
	return m
}

// fetch lists conversations in list mode with an empty query and
// searches messages otherwise.
func (m model) fetch(query string) tea.Cmd {
	db := m.db
	opts := m.searchOpts
	opts.Query = query
	listing := m.mode == modeList && query == ""
	return func() tea.Msg {
		switch {
		case listing:
			results, err := search.ListAll(db, opts)
			return resultsMsg{query: query, results: results, err: err}
		case query == "":
			return resultsMsg{query: query}
		default:
			results, err := search.Search(db, opts)
			return resultsMsg{query: query, results: results, err: err}
		}
	}
}

func debounce(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	r, ok := m.selected()
	if !ok || previewCacheKey(r.ConvKey, r.MsgID) == m.previewKey {
		return nil
	}
	return loadPreviewCmd(m.db, r, m.query, m.previewWidth())
}

func previewCacheKey(convKey string, msgID int) string {
	return fmt.Sprintf("%s:%d", convKey, msgID)
}

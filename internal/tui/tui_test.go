package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/Zuo-Peng/slackprep/internal/search"
)

func TestNextKind(t *testing.T) {
	assert.Equal(t, "channel", nextKind(""))
	assert.Equal(t, "group", nextKind("dm"))
	assert.Equal(t, "", nextKind("group"))
	assert.Equal(t, "", nextKind("bogus"))
}

func TestFormatResultLine(t *testing.T) {
	r := search.Result{
		ConvKey:   "general",
		Kind:      "channel",
		Name:      "general",
		UserName:  "Ann Lee",
		Timestamp: "2024-01-27T10:00:00",
		Snippet:   "the >>>plan<<<\nis ready",
	}
	lines := formatResultLine(r, 60, false)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "01-27")
	assert.Contains(t, lines[0], "general · Ann Lee")
	assert.Contains(t, lines[1], "the plan is ready")
}

func TestStaleSearchResultIgnored(t *testing.T) {
	m := initialModel(nil, "new", search.Options{})
	updated, _ := m.Update(resultsMsg{query: "old", results: []search.Result{{ConvKey: "x"}}})
	assert.Empty(t, updated.(model).results)
}

func TestQuit(t *testing.T) {
	m := initialModel(nil, "", search.Options{})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, updated.(model).quitting)
	assert.NotNil(t, cmd)
}

func TestMoveCursorBounds(t *testing.T) {
	m := initialModel(nil, "q", search.Options{})
	m.results = []search.Result{{ConvKey: "a", MsgID: 0}, {ConvKey: "b", MsgID: 2}}

	updated, _ := m.moveCursor(-1)
	assert.Equal(t, 0, updated.(model).cursor)

	m.previewKey = previewCacheKey("b", 2)
	updated, cmd := m.moveCursor(1)
	assert.Equal(t, 1, updated.(model).cursor)
	assert.Nil(t, cmd)
}

func TestApplyPreviewDropsStale(t *testing.T) {
	m := initialModel(nil, "q", search.Options{})
	m.results = []search.Result{{ConvKey: "a", MsgID: 1}}

	m = m.applyPreview(previewRenderedMsg{convKey: "b", msgID: 0, content: "old"})
	assert.Empty(t, m.previewKey)

	m = m.applyPreview(previewRenderedMsg{convKey: "a", msgID: 1, content: "new"})
	assert.Equal(t, "a:1", m.previewKey)
}

func TestHitTest(t *testing.T) {
	m := initialModel(nil, "", search.Options{})
	m.width, m.height = 100, 30
	m.listOffset = 3

	region, item := m.hitTest(5, 2)
	assert.Equal(t, regionList, region)
	assert.Equal(t, 3, item)

	region, item = m.hitTest(5, 7)
	assert.Equal(t, regionList, region)
	assert.Equal(t, 5, item)

	region, _ = m.hitTest(80, 10)
	assert.Equal(t, regionPreview, region)

	region, _ = m.hitTest(5, 0)
	assert.Equal(t, regionNone, region)
}

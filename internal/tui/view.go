package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	panelH := m.panelHeight()

	listPanel := stylePanelBorder.
		Width(m.listWidth()).
		Height(panelH).
		Render(m.renderList(m.listWidth(), panelH))

	m.preview.Width = m.previewWidth()
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(m.previewWidth()).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, m.filterInput.View(), panels, m.statusBar())
}

// listWidth is 40% of the terminal minus borders.
func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(m.width*40/100-4, 20)
}

// previewWidth is 60% of the terminal minus borders.
func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width*60/100-4, 20)
}

// panelHeight leaves room for the input row, status bar and borders.
func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-6, 5)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	top := 2 // input row + top border
	if y < top || y >= top+m.panelHeight() {
		return regionNone, -1
	}

	lw := m.listWidth()
	switch {
	case x >= 1 && x <= lw:
		return regionList, m.listOffset + (y-top)/linesPerItem
	case x > lw+2:
		return regionPreview, -1
	default:
		return regionNone, -1
	}
}

func (m model) statusBar() string {
	unit := "results"
	if m.mode == modeList && m.query == "" {
		unit = "conversations"
	}
	kind := m.searchOpts.Kind
	if kind == "" {
		kind = "all"
	}
	parts := []string{
		fmt.Sprintf("%d %s", len(m.results), unit),
		"tab kind: " + kind,
		"click/up/dn navigate",
		"scroll/C-u/C-d preview",
		"Enter copy",
		"Esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

package clipdetail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/theme"
)

// BackMsg signals the parent to return to the history list.
type BackMsg struct{}

// Model is the full-content clip preview with scrolling.
type Model struct {
	viewport viewport.Model
	clip     model.ClipRecord
	width    int
	height   int
}

// New creates a new preview model.
func New(width, height int) Model {
	vp := viewport.New(width-6, height-6)
	return Model{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetClip loads a clip into the preview and scrolls to the top.
func (m *Model) SetClip(clip model.ClipRecord) {
	m.clip = clip
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoTop()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the preview view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the preview panel.
func (m Model) View() string {
	badge := theme.ClipTypeStyle(string(m.clip.ClipType)).
		Render(strings.ToUpper(string(m.clip.ClipType)))

	pinned := ""
	if m.clip.IsPinned {
		pinned = theme.PinStyle.Render(" ★ pinned")
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		badge,
		pinned,
		theme.HelpStyle.Render("  captured "+m.clip.CreatedAt.Format("2006-01-02 15:04:05")),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		m.viewport.View(),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// renderBody formats the clip's content for the viewport. Image clips
// show metadata instead of raw bytes.
func (m Model) renderBody() string {
	if m.clip.ClipType == model.ClipTypeImage {
		return fmt.Sprintf("%s\n\nstored at: %s", m.clip.Content, m.clip.ImagePath)
	}
	return m.clip.Content
}

// SetSize updates the preview dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 6
	m.viewport.Height = height - 6
}

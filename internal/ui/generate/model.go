package generate

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/theme"
)

// Mode represents the current state of the generation view.
type Mode int

const (
	ModeForm      Mode = iota // Picking template, provider, instruction
	ModeStreaming             // Output is streaming in
	ModeDone                  // Stream ended (completed, failed, or cancelled)
)

// CloseMsg signals the parent to close the generation view.
type CloseMsg struct{}

// StartMsg asks the parent to assemble the prompt and start streaming.
type StartMsg struct {
	Clips      []model.ClipRecord
	TemplateID string
	ProviderID string
	Extra      string
}

// CancelMsg asks the parent to cancel the in-flight session.
type CancelMsg struct{}

// CopyResultMsg asks the parent to write the generated text back to the
// clipboard.
type CopyResultMsg struct {
	Text string
}

// ChunkMsg carries one streaming event into the view.
type ChunkMsg struct {
	Text string
	Done bool
	Err  error
}

// Model is the generation view: a setup form followed by a streaming
// output panel.
type Model struct {
	mode Mode

	clips     []model.ClipRecord
	templates []model.Template
	providers []model.Provider

	form       *huh.Form
	templateID string
	providerID string
	extra      string

	viewport  viewport.Model
	output    strings.Builder
	errMsg    string
	cancelled bool

	width  int
	height int
}

// New creates a new generation view model.
func New(width, height int) Model {
	vp := viewport.New(width-6, height-8)
	return Model{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// Start opens the setup form for the given material clips.
func (m *Model) Start(
	clips []model.ClipRecord,
	templates []model.Template,
	providers []model.Provider,
) tea.Cmd {
	m.mode = ModeForm
	m.clips = clips
	m.templates = templates
	m.providers = providers
	m.templateID = ""
	m.providerID = ""
	m.extra = ""
	m.output.Reset()
	m.errMsg = ""
	m.cancelled = false
	m.viewport.SetContent("")

	tplOptions := []huh.Option[string]{huh.NewOption("(no template)", "")}
	for _, tpl := range templates {
		label := tpl.Name
		if tpl.Category != "" {
			label = fmt.Sprintf("%s (%s)", tpl.Name, tpl.Category)
		}
		tplOptions = append(tplOptions, huh.NewOption(label, tpl.ID))
	}

	provOptions := []huh.Option[string]{huh.NewOption("(default)", "")}
	for _, p := range providers {
		label := fmt.Sprintf("%s [%s]", p.Name, p.Kind)
		if p.IsDefault {
			label += " *"
		}
		provOptions = append(provOptions, huh.NewOption(label, p.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Template").
				Options(tplOptions...).
				Value(&m.templateID),
			huh.NewSelect[string]().
				Title("Provider").
				Options(provOptions...).
				Value(&m.providerID),
			huh.NewText().
				Title("Additional instruction").
				Placeholder("optional").
				Value(&m.extra),
		),
	).WithWidth(m.width - 8)

	return m.form.Init()
}

// BeginStream skips the setup form and opens the output panel
// directly, for the quick-template path where template and provider
// are already decided.
func (m *Model) BeginStream(clips []model.ClipRecord) {
	m.mode = ModeStreaming
	m.clips = clips
	m.form = nil
	m.output.Reset()
	m.errMsg = ""
	m.cancelled = false
	m.refreshViewport()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the generation view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChunkMsg:
		return m.handleChunk(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeStreaming:
			if msg.String() == "esc" {
				m.cancelled = true
				return m, func() tea.Msg { return CancelMsg{} }
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd

		case ModeDone:
			switch msg.String() {
			case "esc", "q":
				return m, func() tea.Msg { return CloseMsg{} }
			case "y":
				if m.output.Len() > 0 {
					text := m.output.String()
					return m, func() tea.Msg { return CopyResultMsg{Text: text} }
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	if m.mode == ModeForm && m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		switch m.form.State {
		case huh.StateCompleted:
			m.mode = ModeStreaming
			clips := m.clips
			tplID := m.templateID
			provID := m.providerID
			extra := strings.TrimSpace(m.extra)
			return m, func() tea.Msg {
				return StartMsg{
					Clips:      clips,
					TemplateID: tplID,
					ProviderID: provID,
					Extra:      extra,
				}
			}
		case huh.StateAborted:
			return m, func() tea.Msg { return CloseMsg{} }
		}

		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleChunk folds one streaming event into the output panel.
func (m Model) handleChunk(msg ChunkMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.errMsg = msg.Err.Error()
		m.mode = ModeDone
		m.refreshViewport()
		return m, nil
	}
	if msg.Done {
		m.mode = ModeDone
		m.refreshViewport()
		return m, nil
	}

	m.output.WriteString(msg.Text)
	m.refreshViewport()
	return m, nil
}

// refreshViewport re-renders the streamed output and scrolls to bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderOutput())
	m.viewport.GotoBottom()
}

// renderOutput builds the output panel body. Partial output stays
// visible when the stream fails or is cancelled; the error renders
// after it.
func (m Model) renderOutput() string {
	var sections []string

	if m.output.Len() > 0 {
		sections = append(sections, m.output.String())
	}

	switch {
	case m.errMsg != "" && m.cancelled:
		sections = append(sections, "", theme.HelpStyle.Render("(cancelled)"))
	case m.errMsg != "":
		sections = append(sections, "", theme.ErrorStyle.Render("Error: "+m.errMsg))
	case m.mode == ModeStreaming:
		sections = append(sections, "", theme.HelpStyle.Render("..."))
	}

	return strings.Join(sections, "\n")
}

// View renders the generation view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	switch m.mode {
	case ModeForm:
		title := titleStyle.Render(
			fmt.Sprintf("Generate from %d clip(s)", len(m.clips)),
		)
		body := ""
		if m.form != nil {
			body = m.form.View()
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, body)
		return theme.DetailPanelStyle.
			Width(m.width - 4).
			Render(content)

	default:
		label := "Generating"
		if m.mode == ModeDone {
			if m.errMsg != "" {
				label = "Generation failed"
			} else {
				label = "Generation complete"
			}
		}
		title := titleStyle.Render(label)

		hints := theme.HelpStyle.Render("esc cancel")
		if m.mode == ModeDone {
			hints = theme.HelpStyle.Render("y copy result | esc close")
		}

		content := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			m.viewport.View(),
			"",
			hints,
		)
		return theme.DetailPanelStyle.
			Width(m.width - 4).
			Render(content)
	}
}

// Mode returns the current view mode.
func (m Model) CurrentMode() Mode {
	return m.mode
}

// Output returns the streamed text accumulated so far.
func (m Model) Output() string {
	return m.output.String()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 6
	m.viewport.Height = height - 8
	if m.form != nil {
		m.form = m.form.WithWidth(width - 8)
	}
}

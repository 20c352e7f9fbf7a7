package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pastego/pastego/internal/ai"
	"github.com/pastego/pastego/internal/clipboard"
	"github.com/pastego/pastego/internal/keys"
	"github.com/pastego/pastego/internal/store"
	"github.com/pastego/pastego/internal/ui"
	"github.com/pastego/pastego/internal/ui/clipdetail"
	"github.com/pastego/pastego/internal/ui/cliplist"
	"github.com/pastego/pastego/internal/ui/command"
	"github.com/pastego/pastego/internal/ui/generate"
	helpview "github.com/pastego/pastego/internal/ui/help"
	providersview "github.com/pastego/pastego/internal/ui/providers"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewPreview
	ViewGenerate
	ViewProviders
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing, layout,
// the clipboard watcher, and the generation pipeline.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *store.SQLiteStore
	keys         *keys.KeyMap

	clipList      cliplist.Model
	preview       clipdetail.Model
	generateView  generate.Model
	providersView providersview.Model
	helpView      helpview.Model
	commandView   command.Model

	watcher   *clipboard.Watcher
	generator *ai.Generator
	registry  *ai.Registry
	session   *ai.Session

	keepDays  int
	ready     bool
	statusMsg string
}

// New creates the root application model. keepDays is the retention
// window used by the prune command.
func New(s *store.SQLiteStore, w *clipboard.Watcher, g *ai.Generator, keepDays int) Model {
	k := keys.DefaultKeyMap()

	return Model{
		keepDays:      keepDays,
		currentView:   ViewList,
		store:         s,
		keys:          k,
		clipList:      cliplist.New(s, k, 80, 24),
		preview:       clipdetail.New(80, 24),
		generateView:  generate.New(80, 24),
		providersView: providersview.New(s, k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		watcher:       w,
		generator:     g,
		registry:      ai.NewRegistry(s),
	}
}

// Init loads the history and starts the clipboard watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.clipList.Init(),
		m.watcher.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.clipList.SetSize(contentWidth, contentHeight)
		m.preview.SetSize(contentWidth, contentHeight)
		m.generateView.SetSize(contentWidth, contentHeight)
		m.providersView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case clipboard.ClipChangedMsg:
		// A capture landed; refresh the list and keep listening.
		return m, tea.Batch(
			m.clipList.LoadClips(),
			m.watcher.WaitForNextResult(),
		)

	case cliplist.CopyClipMsg:
		return m, m.copyToClipboard(msg.Clip.Content)

	case cliplist.PreviewClipMsg:
		m.previousView = m.currentView
		m.currentView = ViewPreview
		m.preview.SetClip(msg.Clip)
		return m, nil

	case cliplist.GenerateRequestMsg:
		return m, m.loadGenerateOptions(msg.Clips)

	case generateOptionsMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewGenerate
		return m, m.generateView.Start(msg.clips, msg.templates, msg.providers)

	case generate.StartMsg:
		return m, m.startGeneration(msg)

	case quickGenMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewGenerate
		m.generateView.BeginStream(msg.clips)
		return m, m.startGeneration(generate.StartMsg{
			Clips:      msg.clips,
			TemplateID: msg.templateID,
		})

	case generate.CancelMsg:
		if m.session != nil {
			m.session.Cancel()
		}
		return m, nil

	case generate.ChunkMsg:
		var cmd tea.Cmd
		m.generateView, cmd = m.generateView.Update(msg)
		if msg.Done || msg.Err != nil {
			if msg.Err != nil {
				m.statusMsg = aiErrorHint(msg.Err)
			}
			m.session = nil
			return m, cmd
		}
		return m, tea.Batch(cmd, m.waitForChunk())

	case generate.CloseMsg:
		m.clipList.ClearMarks()
		m.currentView = ViewList
		return m, m.clipList.LoadClips()

	case generate.CopyResultMsg:
		return m, m.copyToClipboard(msg.Text)

	case copiedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.statusMsg = "Copied to clipboard"
		}
		return m, nil

	case clipdetail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case providersview.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case providersview.ProviderChangedMsg:
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case prunedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Prune failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Pruned %d old clips", msg.removed)
		return m, m.clipList.LoadClips()

	case tea.KeyMsg:
		// Global keys. The search input owns everything except ctrl+c
		// while it has focus.
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.currentView == ViewList && m.clipList.SearchActive() {
			break
		}
		switch msg.String() {
		case "q":
			if m.currentView == ViewList {
				return m, m.quit()
			}

		case "?":
			// Do not intercept while a form or search owns input.
			if m.currentView == ViewGenerate || m.currentView == ViewProviders ||
				m.currentView == ViewCommand {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			if m.currentView == ViewGenerate || m.currentView == ViewProviders {
				break
			}
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case "P":
			if m.currentView == ViewList {
				m.previousView = m.currentView
				m.currentView = ViewProviders
				return m, m.providersView.Init()
			}
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.clipList, cmd = m.clipList.Update(msg)
	case ViewPreview:
		m.preview, cmd = m.preview.Update(msg)
	case ViewGenerate:
		m.generateView, cmd = m.generateView.Update(msg)
	case ViewProviders:
		m.providersView, cmd = m.providersView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("PasteGo", m.watcherStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.clipList.View()
	case ViewPreview:
		return m.preview.View()
	case ViewGenerate:
		return m.generateView.View()
	case ViewProviders:
		return m.providersView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// watcherStatus returns a short string for the header's right side.
func (m Model) watcherStatus() string {
	if m.session != nil {
		return "generating"
	}
	return "watching"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewList {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close palette | enter execute | esc back"
	case ViewPreview:
		return "esc back | j/k scroll"
	case ViewGenerate:
		return "esc cancel/close"
	case ViewProviders:
		return "a add | e edit | s set default | d delete | esc back"
	default:
		filterSummary := m.clipList.FilterSummary()
		if filterSummary != "" {
			return filterSummary + " | 1-4 clear"
		}
		return "q quit | ? help | / search | space mark | g generate | p pin | P providers"
	}
}

// copyToClipboard writes text back to the system clipboard through the
// watcher, so the write is not re-captured as a new history entry.
func (m *Model) copyToClipboard(text string) tea.Cmd {
	w := m.watcher
	return func() tea.Msg {
		return copiedMsg{err: w.WriteText(text)}
	}
}

// quit stops the watcher before exiting.
func (m *Model) quit() tea.Cmd {
	m.watcher.Stop()
	if m.session != nil {
		m.session.Cancel()
	}
	return tea.Quit
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "prune":
		return m.pruneClips()
	case "clear marks", "clear":
		m.clipList.ClearMarks()
		return nil
	case "providers":
		m.previousView = m.currentView
		m.currentView = ViewProviders
		return m.providersView.Init()
	case "quit", "q":
		return m.quit()
	default:
		// "gen <template>" runs a template against the current
		// clipboard content directly.
		if name, ok := strings.CutPrefix(cmd, "gen "); ok {
			return m.quickGenerate(name)
		}
		m.statusMsg = fmt.Sprintf("Unknown command: %s", cmd)
		return nil
	}
}

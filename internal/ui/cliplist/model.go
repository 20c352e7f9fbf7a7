package cliplist

import (
	"context"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pastego/pastego/internal/keys"
	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/store"
	"github.com/pastego/pastego/internal/theme"
	"github.com/pastego/pastego/internal/ui"
)

// ClipsLoadedMsg is sent when history entries have been loaded.
type ClipsLoadedMsg struct {
	Clips []model.ClipRecord
}

// CopyClipMsg asks the parent to write a clip back to the clipboard.
type CopyClipMsg struct {
	Clip model.ClipRecord
}

// PreviewClipMsg asks the parent to open the full-content preview.
type PreviewClipMsg struct {
	Clip model.ClipRecord
}

// GenerateRequestMsg asks the parent to open the generation view with
// the marked clips, in the order they were marked.
type GenerateRequestMsg struct {
	Clips []model.ClipRecord
}

// clipMutatedMsg is sent after a pin toggle or delete completes.
type clipMutatedMsg struct {
	err error
}

// Model is the clipboard history list view.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	filter      store.ClipFilter
	typeFilters map[model.ClipType]bool
	searchMode  bool
	searchInput textinput.Model

	// marked maps clip ID to its 1-based selection order.
	marked  map[string]int
	markSeq int

	width  int
	height int
}

// New creates a new history list model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	marked := make(map[string]int)

	l := list.New([]list.Item{}, ItemDelegate{marked: marked}, width, height-2)
	l.Title = "History"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search history..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		typeFilters: make(map[model.ClipType]bool),
		marked:      marked,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial history page.
func (m Model) Init() tea.Cmd {
	return m.LoadClips()
}

// Update handles messages for the history list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClipsLoadedMsg:
		items := make([]list.Item, len(msg.Clips))
		for i, clip := range msg.Clips {
			items[i] = ClipItem{Clip: clip}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case clipMutatedMsg:
		// Errors are transient here; the reload shows the real state.
		return m, m.LoadClips()

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Search = &query
		} else {
			m.filter.Search = nil
		}
		return m, m.LoadClips()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Search = nil
		return m, m.LoadClips()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Copy):
		clip, ok := m.SelectedClip()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return CopyClipMsg{Clip: clip}
		}

	case key.Matches(msg, m.keys.Preview):
		clip, ok := m.SelectedClip()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return PreviewClipMsg{Clip: clip}
		}

	case key.Matches(msg, m.keys.Mark):
		clip, ok := m.SelectedClip()
		if !ok {
			return m, nil
		}
		m.toggleMark(clip.ID)
		return m, nil

	case key.Matches(msg, m.keys.Generate):
		clips := m.MarkedClips()
		if len(clips) == 0 {
			if clip, ok := m.SelectedClip(); ok {
				clips = []model.ClipRecord{clip}
			}
		}
		if len(clips) == 0 {
			return m, nil
		}
		return m, func() tea.Msg {
			return GenerateRequestMsg{Clips: clips}
		}

	case key.Matches(msg, m.keys.Pin):
		clip, ok := m.SelectedClip()
		if !ok {
			return m, nil
		}
		return m, m.togglePin(clip.ID)

	case key.Matches(msg, m.keys.Delete):
		clip, ok := m.SelectedClip()
		if !ok {
			return m, nil
		}
		delete(m.marked, clip.ID)
		return m, m.deleteClip(clip.ID)

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterText):
		m.toggleTypeFilter(model.ClipTypeText)
		return m, m.LoadClips()

	case key.Matches(msg, m.keys.FilterCode):
		m.toggleTypeFilter(model.ClipTypeCode)
		return m, m.LoadClips()

	case key.Matches(msg, m.keys.FilterURL):
		m.toggleTypeFilter(model.ClipTypeURL)
		return m, m.LoadClips()

	case key.Matches(msg, m.keys.FilterImage):
		m.toggleTypeFilter(model.ClipTypeImage)
		return m, m.LoadClips()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleMark flips a clip's membership in the generation selection,
// preserving the order marks were made in.
func (m *Model) toggleMark(id string) {
	if _, ok := m.marked[id]; ok {
		delete(m.marked, id)
		return
	}
	m.markSeq++
	m.marked[id] = m.markSeq
}

// toggleTypeFilter toggles a clip type filter. When exactly one type is
// active it is applied; otherwise all types are shown.
func (m *Model) toggleTypeFilter(ct model.ClipType) {
	if m.typeFilters[ct] {
		delete(m.typeFilters, ct)
	} else {
		m.typeFilters[ct] = true
	}

	var active []model.ClipType
	for t, on := range m.typeFilters {
		if on {
			active = append(active, t)
		}
	}

	if len(active) == 1 {
		t := active[0]
		m.filter.Type = &t
	} else {
		m.filter.Type = nil
	}
}

// SearchActive reports whether the search input currently owns
// keyboard input.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// SelectedClip returns the clip under the cursor.
func (m Model) SelectedClip() (model.ClipRecord, bool) {
	item, ok := m.list.SelectedItem().(ClipItem)
	if !ok {
		return model.ClipRecord{}, false
	}
	return item.Clip, true
}

// MarkedClips returns the marked clips in selection order.
func (m Model) MarkedClips() []model.ClipRecord {
	type entry struct {
		clip model.ClipRecord
		seq  int
	}

	var entries []entry
	for _, item := range m.list.Items() {
		ci, ok := item.(ClipItem)
		if !ok {
			continue
		}
		if seq, marked := m.marked[ci.Clip.ID]; marked {
			entries = append(entries, entry{clip: ci.Clip, seq: seq})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	clips := make([]model.ClipRecord, len(entries))
	for i, e := range entries {
		clips[i] = e.clip
	}
	return clips
}

// ClearMarks drops the generation selection.
func (m *Model) ClearMarks() {
	for id := range m.marked {
		delete(m.marked, id)
	}
	m.markSeq = 0
}

// FilterSummary describes the active filters for the status bar, or ""
// when none are active.
func (m Model) FilterSummary() string {
	summary := ""
	if m.filter.Type != nil {
		summary = "type: " + string(*m.filter.Type)
	}
	if m.filter.Search != nil {
		if summary != "" {
			summary += " | "
		}
		summary += "search: " + *m.filter.Search
	}
	return summary
}

// View renders the history list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no clips are available.
func (m Model) renderEmptyState() string {
	if m.filter.Search != nil || m.filter.Type != nil {
		return ui.Centered(m.width, m.height,
			"No matching clips.\nTry adjusting your filters.")
	}
	return ui.Centered(m.width, m.height,
		"History is empty.\n\nCopy something and it will show up here.")
}

// LoadClips returns a tea.Cmd that queries the store with the current
// filter.
func (m Model) LoadClips() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		clips, err := s.GetClips(context.Background(), filter)
		if err != nil {
			return ClipsLoadedMsg{Clips: nil}
		}
		return ClipsLoadedMsg{Clips: clips}
	}
}

// togglePin flips the pinned flag on a clip.
func (m Model) togglePin(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		_, err := s.TogglePin(context.Background(), id)
		return clipMutatedMsg{err: err}
	}
}

// deleteClip removes a clip from history.
func (m Model) deleteClip(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteClip(context.Background(), id)
		return clipMutatedMsg{err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

package providers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/pastego/pastego/internal/credential"
	"github.com/pastego/pastego/internal/keys"
	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/store"
	"github.com/pastego/pastego/internal/theme"
	"github.com/pastego/pastego/internal/ui"
)

// Mode represents the current state of the provider settings view.
type Mode int

const (
	ModeList          Mode = iota // List configured providers
	ModeForm                      // Add or edit form
	ModeConfirmDelete             // Confirm provider deletion
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// ProviderChangedMsg signals a provider was saved or deleted.
type ProviderChangedMsg struct{}

// providersLoadedMsg is sent when providers have been loaded.
type providersLoadedMsg struct {
	providers []model.Provider
	err       error
}

// providerSavedMsg is sent after a provider is persisted.
type providerSavedMsg struct {
	provider model.Provider
	err      error
}

// providerDeletedMsg is sent after a provider is removed.
type providerDeletedMsg struct {
	id  string
	err error
}

// endpointPlaceholders suggests the usual base URL per provider kind.
var endpointPlaceholders = map[string]string{
	string(model.ProviderOpenAI):  "https://api.openai.com/v1",
	string(model.ProviderClaude):  "https://api.anthropic.com/v1",
	string(model.ProviderOllama):  "http://localhost:11434",
	string(model.ProviderKimi):    "https://api.moonshot.cn/v1",
	string(model.ProviderMinimax): "https://api.minimax.chat/v1",
}

// Model is the provider settings view.
type Model struct {
	mode      Mode
	store     store.Store
	providers []model.Provider

	selectedIdx int
	editingID   string

	form        *huh.Form
	confirmForm *huh.Form

	// Form field values (huh binds to these).
	formName      string
	formKind      string
	formEndpoint  string
	formModel     string
	formAPIKey    string
	formDefault   bool
	formInKeyring bool

	deleteConfirm bool
	statusMsg     string

	keys          *keys.KeyMap
	width, height int
}

// New creates a new provider settings model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   ModeList,
		store:  s,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init loads providers from the store on first render.
func (m Model) Init() tea.Cmd {
	return m.loadProviders()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case providersLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading providers: %v", msg.err)
			return m, nil
		}
		m.providers = msg.providers
		if m.selectedIdx >= len(m.providers) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.providers) - 1
		}
		return m, nil

	case providerSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving provider: %v", msg.err)
			m.mode = ModeList
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Provider %q saved", msg.provider.Name)
		m.mode = ModeList
		return m, tea.Batch(
			m.loadProviders(),
			func() tea.Msg { return ProviderChangedMsg{} },
		)

	case providerDeletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error deleting provider: %v", msg.err)
			m.mode = ModeList
			return m, nil
		}
		m.statusMsg = "Provider deleted"
		m.mode = ModeList
		return m, tea.Batch(
			m.loadProviders(),
			func() tea.Msg { return ProviderChangedMsg{} },
		)
	}

	switch m.mode {
	case ModeList:
		return m.updateList(msg)
	case ModeForm:
		return m.updateForm(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m, nil
}

// updateList handles key input in the provider list.
func (m Model) updateList(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return DoneMsg{} }

	case "j", "down":
		if m.selectedIdx < len(m.providers)-1 {
			m.selectedIdx++
		}
	case "k", "up":
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}

	case "a", "n":
		m.startForm(nil)
		return m, m.form.Init()

	case "e", "enter":
		if m.selectedIdx < len(m.providers) {
			p := m.providers[m.selectedIdx]
			m.startForm(&p)
			return m, m.form.Init()
		}

	case "s":
		// Make the selected provider the default.
		if m.selectedIdx < len(m.providers) {
			p := m.providers[m.selectedIdx]
			p.IsDefault = true
			return m, m.saveProvider(p, "", false)
		}

	case "d":
		if m.selectedIdx < len(m.providers) {
			m.deleteConfirm = false
			m.confirmForm = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete provider %q?", m.providers[m.selectedIdx].Name)).
						Value(&m.deleteConfirm),
				),
			)
			m.mode = ModeConfirmDelete
			return m, m.confirmForm.Init()
		}
	}

	return m, nil
}

// startForm initializes the huh form for adding or editing a provider.
func (m *Model) startForm(existing *model.Provider) {
	if existing != nil {
		m.editingID = existing.ID
		m.formName = existing.Name
		m.formKind = string(existing.Kind)
		m.formEndpoint = existing.Endpoint
		m.formModel = existing.Model
		m.formAPIKey = existing.APIKey
		m.formDefault = existing.IsDefault
	} else {
		m.editingID = ""
		m.formName = ""
		m.formKind = string(model.ProviderOpenAI)
		m.formEndpoint = ""
		m.formModel = ""
		m.formAPIKey = ""
		m.formDefault = len(m.providers) == 0
	}
	m.formInKeyring = false

	kindOptions := []huh.Option[string]{
		huh.NewOption("OpenAI-compatible", string(model.ProviderOpenAI)),
		huh.NewOption("Claude", string(model.ProviderClaude)),
		huh.NewOption("Ollama (local)", string(model.ProviderOllama)),
		huh.NewOption("Kimi", string(model.ProviderKimi)),
		huh.NewOption("Minimax", string(model.ProviderMinimax)),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Kind").
				Options(kindOptions...).
				Value(&m.formKind),
			huh.NewInput().
				Title("Endpoint").
				Placeholder(endpointPlaceholders[m.formKind]).
				Value(&m.formEndpoint).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return fmt.Errorf("endpoint is required")
					}
					u, err := url.Parse(s)
					if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
						return fmt.Errorf("endpoint must be an http(s) URL")
					}
					return nil
				}),
			huh.NewInput().
				Title("Model").
				Value(&m.formModel),
			huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&m.formAPIKey),
			huh.NewConfirm().
				Title("Store API key in system keyring?").
				Value(&m.formInKeyring),
			huh.NewConfirm().
				Title("Use as default provider?").
				Value(&m.formDefault),
		),
	).WithWidth(m.width - 8)

	m.mode = ModeForm
}

// updateForm drives the huh form until it completes or aborts.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		id := m.editingID
		if id == "" {
			id = uuid.NewString()
		}
		p := model.Provider{
			ID:        id,
			Name:      strings.TrimSpace(m.formName),
			Kind:      model.ProviderKind(m.formKind),
			Endpoint:  strings.TrimSpace(m.formEndpoint),
			Model:     strings.TrimSpace(m.formModel),
			APIKey:    m.formAPIKey,
			IsDefault: m.formDefault,
		}
		return m, m.saveProvider(p, m.formAPIKey, m.formInKeyring)

	case huh.StateAborted:
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// updateConfirmDelete drives the delete confirmation form.
func (m Model) updateConfirmDelete(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.confirmForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirmForm = f
	}

	switch m.confirmForm.State {
	case huh.StateCompleted:
		if !m.deleteConfirm || m.selectedIdx >= len(m.providers) {
			m.mode = ModeList
			return m, nil
		}
		return m, m.deleteProvider(m.providers[m.selectedIdx].ID)

	case huh.StateAborted:
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// View renders the provider settings view.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return theme.DetailPanelStyle.
			Width(m.width - 4).
			Render(m.form.View())

	case ModeConfirmDelete:
		return theme.DetailPanelStyle.
			Width(m.width - 4).
			Render(m.confirmForm.View())

	default:
		return m.renderList()
	}
}

// renderList draws the configured providers.
func (m Model) renderList() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var lines []string
	lines = append(lines, titleStyle.Render("AI Providers"))

	if len(m.providers) == 0 {
		lines = append(lines, ui.Centered(m.width-8, 3,
			"No providers configured.\nPress a to add one."))
	}

	for i, p := range m.providers {
		badge := theme.ProviderBadgeStyle(p.IsDefault).Render(string(p.Kind))
		def := ""
		if p.IsDefault {
			def = theme.MarkStyle.Render(" (default)")
		}
		line := fmt.Sprintf("%s %s%s  %s", badge, p.Name, def,
			theme.HelpStyle.Render(p.Model))
		if i == m.selectedIdx {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if m.statusMsg != "" {
		lines = append(lines, "", theme.HelpStyle.Render(m.statusMsg))
	}

	content := strings.Join(lines, "\n")
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// loadProviders returns a command that queries the store.
func (m Model) loadProviders() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		providers, err := s.GetProviders(context.Background())
		return providersLoadedMsg{providers: providers, err: err}
	}
}

// saveProvider persists a provider. When inKeyring is set, the API key
// goes to the system keyring instead of the database.
func (m Model) saveProvider(p model.Provider, apiKey string, inKeyring bool) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if inKeyring && apiKey != "" {
			if err := credential.Set(credential.ProviderKey(p.ID), apiKey); err != nil {
				// Fall back to storing the key in the database.
				log.Printf("keyring unavailable, keeping key in database: %v", err)
			} else {
				p.APIKey = ""
			}
		}
		saved, err := s.UpsertProvider(context.Background(), p)
		if err != nil {
			return providerSavedMsg{err: err}
		}
		return providerSavedMsg{provider: *saved}
	}
}

// deleteProvider removes a provider and its keyring entry.
func (m Model) deleteProvider(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteProvider(context.Background(), id); err != nil {
			return providerDeletedMsg{id: id, err: err}
		}
		// Best effort; the entry may not exist.
		if err := credential.Delete(credential.ProviderKey(id)); err != nil {
			log.Printf("removing keyring entry for %s: %v", id, err)
		}
		return providerDeletedMsg{id: id}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

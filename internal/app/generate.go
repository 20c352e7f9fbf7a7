package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pastego/pastego/internal/ai"
	"github.com/pastego/pastego/internal/classify"
	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/prompt"
	"github.com/pastego/pastego/internal/ui/generate"
)

// generateOptionsMsg carries everything the generation form needs.
type generateOptionsMsg struct {
	clips     []model.ClipRecord
	templates []model.Template
	providers []model.Provider
	err       error
}

// copiedMsg is sent after a clipboard write attempt.
type copiedMsg struct {
	err error
}

// prunedMsg is sent after old clips were pruned.
type prunedMsg struct {
	removed int
	err     error
}

// loadGenerateOptions fetches templates and providers for the setup
// form.
func (m *Model) loadGenerateOptions(clips []model.ClipRecord) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()

		templates, err := s.GetTemplates(ctx)
		if err != nil {
			return generateOptionsMsg{err: fmt.Errorf("loading templates: %w", err)}
		}
		providers, err := s.GetProviders(ctx)
		if err != nil {
			return generateOptionsMsg{err: fmt.Errorf("loading providers: %w", err)}
		}

		return generateOptionsMsg{
			clips:     clips,
			templates: templates,
			providers: providers,
		}
	}
}

// startGeneration resolves the provider, assembles the prompt, and
// opens a streaming session. The first chunk wait is chained off the
// session start.
func (m *Model) startGeneration(msg generate.StartMsg) tea.Cmd {
	ctx := context.Background()

	p, err := m.registry.Resolve(ctx, msg.ProviderID)
	if err != nil {
		return failChunk(err)
	}

	var tpl *model.Template
	if msg.TemplateID != "" {
		tpl, err = m.store.GetTemplateByID(ctx, msg.TemplateID)
		if err != nil {
			return failChunk(fmt.Errorf("loading template: %w", err))
		}
	}

	promptText := prompt.Assemble(msg.Clips, tpl, msg.Extra)

	session, err := m.generator.Start(ctx, p, promptText)
	if err != nil {
		return failChunk(err)
	}
	m.session = session

	return m.waitForChunk()
}

// waitForChunk bridges the session's event channel into the Bubble Tea
// message loop, one chunk per command.
func (m *Model) waitForChunk() tea.Cmd {
	session := m.session
	if session == nil {
		return nil
	}
	return func() tea.Msg {
		chunk, ok := <-session.Events()
		if !ok {
			return generate.ChunkMsg{Done: true}
		}
		return generate.ChunkMsg{
			Text: chunk.Text,
			Done: chunk.Done,
			Err:  chunk.Err,
		}
	}
}

// failChunk surfaces a setup error through the same path as stream
// failures, so the view renders it in place.
func failChunk(err error) tea.Cmd {
	return func() tea.Msg {
		return generate.ChunkMsg{Err: err}
	}
}

// quickGenMsg carries the synthetic selection for a quick-template run.
type quickGenMsg struct {
	clips      []model.ClipRecord
	templateID string
	err        error
}

// quickGenerate resolves a template by name or shortcut and turns the
// current clipboard text into a one-item selection generated against
// the default provider, skipping the setup form.
func (m *Model) quickGenerate(nameOrShortcut string) tea.Cmd {
	s := m.store
	w := m.watcher
	return func() tea.Msg {
		text, err := w.ReadText()
		if err != nil {
			return quickGenMsg{err: fmt.Errorf("reading clipboard: %w", err)}
		}
		if strings.TrimSpace(text) == "" {
			return quickGenMsg{err: fmt.Errorf("clipboard is empty")}
		}

		templates, err := s.GetTemplates(context.Background())
		if err != nil {
			return quickGenMsg{err: fmt.Errorf("loading templates: %w", err)}
		}

		want := strings.ToLower(strings.TrimSpace(nameOrShortcut))
		var tplID string
		for _, tpl := range templates {
			if strings.ToLower(tpl.Name) == want || strings.ToLower(tpl.Shortcut) == want {
				tplID = tpl.ID
				break
			}
		}
		if tplID == "" {
			return quickGenMsg{err: fmt.Errorf("no template named %q", nameOrShortcut)}
		}

		clipType, _ := classify.Classify(classify.Payload{Text: text})
		clip := model.ClipRecord{Content: text, ClipType: clipType}

		return quickGenMsg{
			clips:      []model.ClipRecord{clip},
			templateID: tplID,
		}
	}
}

// pruneClips removes unpinned clips older than the retention window.
func (m *Model) pruneClips() tea.Cmd {
	s := m.store
	keepDays := m.keepDays
	return func() tea.Msg {
		removed, err := s.PruneClips(context.Background(), keepDays)
		return prunedMsg{removed: removed, err: err}
	}
}

// aiErrorHint maps common failures to a short actionable message.
func aiErrorHint(err error) string {
	switch {
	case ai.IsAuthError(err):
		return "authentication failed; check the provider's API key"
	default:
		return err.Error()
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pastego/pastego/internal/model"
)

// UpsertTemplate inserts or replaces a template by id, generating an id
// when absent. Name and prompt must be non-empty; validation failures
// surface before anything is saved.
func (s *SQLiteStore) UpsertTemplate(
	ctx context.Context,
	tpl model.Template,
) (*model.Template, error) {
	if strings.TrimSpace(tpl.Name) == "" {
		return nil, fmt.Errorf("template name must not be empty: %w", ErrValidation)
	}
	if strings.TrimSpace(tpl.Prompt) == "" {
		return nil, fmt.Errorf("template prompt must not be empty: %w", ErrValidation)
	}

	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	if tpl.Category == "" {
		tpl.Category = "general"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO templates (id, name, prompt, category, shortcut)
		VALUES (?, ?, ?, ?, ?)`,
		tpl.ID, tpl.Name, tpl.Prompt, tpl.Category, tpl.Shortcut,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting template %s: %w", tpl.ID, err)
	}

	return &tpl, nil
}

// GetTemplates retrieves all templates ordered by category, then name.
func (s *SQLiteStore) GetTemplates(ctx context.Context) ([]model.Template, error) {
	var templates []model.Template
	err := s.db.SelectContext(ctx, &templates,
		"SELECT * FROM templates ORDER BY category, name",
	)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	return templates, nil
}

// GetTemplateByID retrieves a single template by its ID.
func (s *SQLiteStore) GetTemplateByID(
	ctx context.Context,
	id string,
) (*model.Template, error) {
	var tpl model.Template
	err := s.db.GetContext(ctx, &tpl, "SELECT * FROM templates WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting template %s: %w", id, err)
	}
	return &tpl, nil
}

// DeleteTemplate removes a template by ID. Absent ids are a no-op.
func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	return nil
}

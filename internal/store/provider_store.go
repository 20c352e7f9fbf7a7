package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pastego/pastego/internal/model"
)

// UpsertProvider inserts or replaces a provider by id, generating an id
// when absent. Saving a provider with IsDefault set clears the flag on
// every other provider in the same transaction, so at most one default
// exists after any sequence of saves.
func (s *SQLiteStore) UpsertProvider(
	ctx context.Context,
	p model.Provider,
) (*model.Provider, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("provider name must not be empty: %w", ErrValidation)
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if p.IsDefault {
		if _, err := tx.ExecContext(ctx, "UPDATE ai_providers SET is_default = 0"); err != nil {
			return nil, fmt.Errorf("clearing default providers: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO ai_providers (id, name, kind, endpoint, model, api_key, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Kind), p.Endpoint, p.Model, p.APIKey,
		boolToInt(p.IsDefault),
	)
	if err != nil {
		return nil, fmt.Errorf("upserting provider %s: %w", p.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing provider upsert: %w", err)
	}

	return &p, nil
}

// GetProviders retrieves all configured providers ordered by name.
func (s *SQLiteStore) GetProviders(ctx context.Context) ([]model.Provider, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, name, kind, endpoint, model, api_key, is_default FROM ai_providers ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("querying providers: %w", err)
	}
	defer rows.Close()

	var providers []model.Provider
	for rows.Next() {
		var (
			p         model.Provider
			kind      string
			isDefault int
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &kind, &p.Endpoint, &p.Model, &p.APIKey, &isDefault,
		); err != nil {
			return nil, fmt.Errorf("scanning provider row: %w", err)
		}
		p.Kind = model.ProviderKind(kind)
		p.IsDefault = isDefault != 0
		providers = append(providers, p)
	}

	return providers, rows.Err()
}

// DeleteProvider removes a provider by ID. If the deleted provider was
// the default, no other provider is promoted; picking a new default is
// an explicit user action.
func (s *SQLiteStore) DeleteProvider(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM ai_providers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting provider %s: %w", id, err)
	}
	return nil
}

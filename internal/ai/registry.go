package ai

import (
	"context"
	"fmt"

	"github.com/pastego/pastego/internal/credential"
	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/store"
)

// Registry selects the provider for a generation request and fills in
// credentials kept outside the database.
type Registry struct {
	store     store.Store
	keyLookup func(providerID string) (string, error)
}

// NewRegistry creates a Registry backed by the given store. API keys
// absent from the database are looked up in the system keyring.
func NewRegistry(s store.Store) *Registry {
	return &Registry{
		store: s,
		keyLookup: func(providerID string) (string, error) {
			return credential.Get(credential.ProviderKey(providerID))
		},
	}
}

// SetKeyLookup overrides the keyring lookup (tests).
func (r *Registry) SetKeyLookup(fn func(providerID string) (string, error)) {
	r.keyLookup = fn
}

// Resolve picks the provider for a request: the explicit id when it
// exists, else the configured default, else the first provider.
// Returns ErrNoProvider when none are configured.
func (r *Registry) Resolve(ctx context.Context, explicitID string) (model.Provider, error) {
	providers, err := r.store.GetProviders(ctx)
	if err != nil {
		return model.Provider{}, fmt.Errorf("loading providers: %w", err)
	}
	if len(providers) == 0 {
		return model.Provider{}, ErrNoProvider
	}

	var chosen *model.Provider

	if explicitID != "" {
		for i := range providers {
			if providers[i].ID == explicitID {
				chosen = &providers[i]
				break
			}
		}
	}
	if chosen == nil {
		for i := range providers {
			if providers[i].IsDefault {
				chosen = &providers[i]
				break
			}
		}
	}
	if chosen == nil {
		chosen = &providers[0]
	}

	p := *chosen
	if p.APIKey == "" && p.Kind != model.ProviderOllama && r.keyLookup != nil {
		// Best effort: a missing keyring entry just means the key is
		// genuinely empty (or the provider needs none).
		if key, err := r.keyLookup(p.ID); err == nil {
			p.APIKey = key
		}
	}

	return p, nil
}

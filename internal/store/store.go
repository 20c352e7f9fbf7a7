package store

import (
	"context"
	"errors"

	"github.com/pastego/pastego/internal/classify"
	"github.com/pastego/pastego/internal/model"
)

// ErrNotFound is returned when an operation targets an unknown id.
var ErrNotFound = errors.New("record not found")

// ErrValidation is returned when a record fails validation before any
// persistence happens.
var ErrValidation = errors.New("validation failed")

// ClipFilter controls filtering and pagination for clip queries.
type ClipFilter struct {
	// Search is a case-insensitive substring match against content.
	Search *string

	// Type restricts results to one clip type.
	Type *model.ClipType

	Limit  int
	Offset int
}

// ChangeEvent describes a mutation that changed the visible clip list.
type ChangeEvent struct {
	// Clip is the record involved, when the mutation concerns one.
	Clip *model.ClipRecord
}

// Store defines the persistence interface for clips, templates, and
// AI providers.
type Store interface {
	// === Clips ===

	InsertClip(ctx context.Context, p classify.Payload, sourceApp string) (*model.ClipRecord, bool, error)
	GetClips(ctx context.Context, filter ClipFilter) ([]model.ClipRecord, error)
	GetClipByID(ctx context.Context, id string) (*model.ClipRecord, error)
	TogglePin(ctx context.Context, id string) (bool, error)
	DeleteClip(ctx context.Context, id string) error
	DeleteClips(ctx context.Context, ids []string) error
	PruneClips(ctx context.Context, keepDays int) (int, error)

	// === Templates ===

	UpsertTemplate(ctx context.Context, tpl model.Template) (*model.Template, error)
	GetTemplates(ctx context.Context) ([]model.Template, error)
	GetTemplateByID(ctx context.Context, id string) (*model.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// === Providers ===

	UpsertProvider(ctx context.Context, p model.Provider) (*model.Provider, error)
	GetProviders(ctx context.Context) ([]model.Provider, error)
	DeleteProvider(ctx context.Context, id string) error
}

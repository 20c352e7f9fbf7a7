package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pastego/pastego/internal/classify"
	"github.com/pastego/pastego/internal/model"
)

// InsertClip classifies and hashes a raw payload, then either creates a
// new record or, when an unpinned record with the same hash exists
// within the dedup window, bumps that record's timestamp and returns it.
// The returned bool reports whether a new record was created. Pinned
// records never absorb duplicates; the user's intent to keep a specific
// instance is preserved.
func (s *SQLiteStore) InsertClip(
	ctx context.Context,
	p classify.Payload,
	sourceApp string,
) (*model.ClipRecord, bool, error) {
	clipType, hash := classify.Classify(p)
	now := time.Now().UTC()

	// Duplicate within the window: refresh created_at so the record
	// surfaces at the top of the list again.
	cutoff := now.Add(-s.dedupWindow)
	existing, err := s.findUnpinnedByHash(ctx, hash, cutoff)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		_, err = s.db.ExecContext(ctx,
			"UPDATE clip_items SET created_at = ? WHERE id = ?",
			now, existing.ID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("refreshing duplicate clip %s: %w", existing.ID, err)
		}
		existing.CreatedAt = now
		s.notifyChange(ChangeEvent{Clip: existing})
		return existing, false, nil
	}

	rec := model.ClipRecord{
		ID:          uuid.New().String(),
		ContentHash: hash,
		ClipType:    clipType,
		SourceApp:   sourceApp,
		CreatedAt:   now,
	}

	if p.IsImage() {
		if s.blobs == nil {
			return nil, false, fmt.Errorf("inserting image clip: no blob store configured")
		}
		path, err := s.blobs.Save(p.Image)
		if err != nil {
			return nil, false, fmt.Errorf("storing image blob: %w", err)
		}
		rec.ImagePath = path
		rec.Content = fmt.Sprintf("[image %d bytes]", len(p.Image))
	} else {
		rec.Content = p.Text
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clip_items (
			id, content, content_hash, clip_type,
			source_app, image_path, is_pinned, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Content, rec.ContentHash, string(rec.ClipType),
		rec.SourceApp, rec.ImagePath, boolToInt(rec.IsPinned), rec.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("inserting clip: %w", err)
	}

	s.notifyChange(ChangeEvent{Clip: &rec})
	return &rec, true, nil
}

// findUnpinnedByHash returns the most recent unpinned record with the
// given hash created after cutoff, or nil.
func (s *SQLiteStore) findUnpinnedByHash(
	ctx context.Context,
	hash string,
	cutoff time.Time,
) (*model.ClipRecord, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT * FROM clip_items
		WHERE content_hash = ? AND is_pinned = 0 AND created_at >= ?
		ORDER BY created_at DESC LIMIT 1`,
		hash, cutoff,
	)

	rec, err := scanClipRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up duplicate hash: %w", err)
	}
	return &rec, nil
}

// GetClips retrieves clips matching the filter. Ordering contract:
// pinned records first, then unpinned, each group by created_at
// descending.
func (s *SQLiteStore) GetClips(
	ctx context.Context,
	filter ClipFilter,
) ([]model.ClipRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, "content LIKE ?")
		args = append(args, "%"+*filter.Search+"%")
	}
	if filter.Type != nil {
		conditions = append(conditions, "clip_type = ?")
		args = append(args, string(*filter.Type))
	}

	query := "SELECT * FROM clip_items"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY is_pinned DESC, created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying clips: %w", err)
	}
	defer rows.Close()

	var clips []model.ClipRecord
	for rows.Next() {
		rec, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, rec)
	}

	return clips, rows.Err()
}

// GetClipByID retrieves a single clip by its ID.
func (s *SQLiteStore) GetClipByID(
	ctx context.Context,
	id string,
) (*model.ClipRecord, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM clip_items WHERE id = ?", id)

	rec, err := scanClipRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting clip %s: %w", id, err)
	}

	return &rec, nil
}

// TogglePin flips a clip's pinned flag and returns the new state.
// created_at is left untouched. Returns ErrNotFound for an unknown id.
func (s *SQLiteStore) TogglePin(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clip_items
		SET is_pinned = CASE WHEN is_pinned = 0 THEN 1 ELSE 0 END
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("toggling pin on clip %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggling pin on clip %s: %w", id, err)
	}
	if affected == 0 {
		return false, ErrNotFound
	}

	var pinned int
	if err := s.db.GetContext(ctx, &pinned,
		"SELECT is_pinned FROM clip_items WHERE id = ?", id,
	); err != nil {
		return false, fmt.Errorf("reading pin state of clip %s: %w", id, err)
	}

	s.notifyChange(ChangeEvent{})
	return pinned != 0, nil
}

// DeleteClip removes a clip by ID. Deleting an absent id is not an
// error; the desired state already holds.
func (s *SQLiteStore) DeleteClip(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clip_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting clip %s: %w", id, err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.notifyChange(ChangeEvent{})
	}
	return nil
}

// DeleteClips removes a batch of clips best-effort: an already-absent
// id does not fail the batch.
func (s *SQLiteStore) DeleteClips(ctx context.Context, ids []string) error {
	deleted := false
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx, "DELETE FROM clip_items WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting clip %s: %w", id, err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected > 0 {
			deleted = true
		}
	}

	if deleted {
		s.notifyChange(ChangeEvent{})
	}
	return nil
}

// PruneClips deletes unpinned clips older than keepDays and returns the
// number removed. Pinned records are never pruned.
func (s *SQLiteStore) PruneClips(ctx context.Context, keepDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM clip_items WHERE is_pinned = 0 AND created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning clips: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning clips: %w", err)
	}

	if affected > 0 {
		s.notifyChange(ChangeEvent{})
	}
	return int(affected), nil
}

// scanClip scans a clip row from a sqlx.Rows result set.
func scanClip(rows *sqlx.Rows) (model.ClipRecord, error) {
	var (
		rec       model.ClipRecord
		clipType  string
		pinned    int
		createdAt time.Time
	)

	err := rows.Scan(
		&rec.ID, &rec.Content, &rec.ContentHash, &clipType,
		&rec.SourceApp, &rec.ImagePath, &pinned, &createdAt,
	)
	if err != nil {
		return model.ClipRecord{}, fmt.Errorf("scanning clip row: %w", err)
	}

	rec.ClipType = model.ClipType(clipType)
	rec.IsPinned = pinned != 0
	rec.CreatedAt = createdAt

	return rec, nil
}

// scanClipRow scans a single clip row from a sqlx.Row.
func scanClipRow(row *sqlx.Row) (model.ClipRecord, error) {
	var (
		rec       model.ClipRecord
		clipType  string
		pinned    int
		createdAt time.Time
	)

	err := row.Scan(
		&rec.ID, &rec.Content, &rec.ContentHash, &clipType,
		&rec.SourceApp, &rec.ImagePath, &pinned, &createdAt,
	)
	if err != nil {
		return model.ClipRecord{}, err
	}

	rec.ClipType = model.ClipType(clipType)
	rec.IsPinned = pinned != 0
	rec.CreatedAt = createdAt

	return rec, nil
}

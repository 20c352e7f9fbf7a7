package model

import "time"

// ClipType classifies the content of a clipboard record.
type ClipType string

const (
	ClipTypeText  ClipType = "text"
	ClipTypeCode  ClipType = "code"
	ClipTypeURL   ClipType = "url"
	ClipTypeImage ClipType = "image"
)

// ClipRecord is one stored clipboard observation.
type ClipRecord struct {
	// ID is the unique identifier, assigned at insert time.
	ID string `db:"id"`

	// Content is the text payload. For image records it holds a short
	// display label; the bytes live behind ImagePath.
	Content string `db:"content"`

	// ContentHash is the normalized fingerprint used for deduplication.
	ContentHash string `db:"content_hash"`

	// ClipType is decided once at insert and never changes.
	ClipType ClipType `db:"clip_type"`

	// SourceApp is a best-effort provenance label; may be empty.
	SourceApp string `db:"source_app"`

	// ImagePath is the blob-store reference for image records.
	ImagePath string `db:"image_path"`

	// IsPinned marks records exempt from retention pruning. Pinned
	// records sort ahead of unpinned ones regardless of recency.
	IsPinned bool `db:"is_pinned"`

	CreatedAt time.Time `db:"created_at"`
}

package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS clip_items (
	id           TEXT PRIMARY KEY,
	content      TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	clip_type    TEXT NOT NULL DEFAULT 'text',
	source_app   TEXT NOT NULL DEFAULT '',
	image_path   TEXT NOT NULL DEFAULT '',
	is_pinned    INTEGER NOT NULL DEFAULT 0 CHECK(is_pinned IN (0, 1)),
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clip_items_created_at ON clip_items(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_clip_items_hash ON clip_items(content_hash);
CREATE INDEX IF NOT EXISTS idx_clip_items_type ON clip_items(clip_type);
CREATE INDEX IF NOT EXISTS idx_clip_items_pinned ON clip_items(is_pinned);

CREATE TABLE IF NOT EXISTS templates (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	prompt   TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'general',
	shortcut TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ai_providers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	endpoint   TEXT NOT NULL,
	model      TEXT NOT NULL,
	api_key    TEXT NOT NULL DEFAULT '',
	is_default INTEGER NOT NULL DEFAULT 0 CHECK(is_default IN (0, 1))
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
INSERT INTO templates (id, name, prompt, category, shortcut)
SELECT 'tpl-translate', 'Translate',
	'Translate the following content into English (or into the user''s language if it is already English):' || char(10) || char(10) || '{{materials}}',
	'general', 'CmdOrCtrl+Shift+T'
WHERE NOT EXISTS (SELECT 1 FROM templates);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

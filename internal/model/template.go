package model

// Template is a named reusable prompt. The prompt text contains a
// single materials placeholder that the assembler substitutes with the
// selected clipboard content.
type Template struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Prompt   string `db:"prompt"`
	Category string `db:"category"`

	// Shortcut is an opaque key-binding string owned by the hotkey
	// collaborator (e.g. "CmdOrCtrl+Shift+T"); empty means unbound.
	Shortcut string `db:"shortcut"`
}

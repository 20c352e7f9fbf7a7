// Package clipboard watches the OS clipboard and feeds new content into
// the history store.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ContentKind distinguishes what the OS clipboard currently holds.
type ContentKind int

const (
	KindText ContentKind = iota
	KindImage
)

// Content is one raw clipboard read.
type Content struct {
	Kind  ContentKind
	Text  string
	Image []byte
}

// ErrUnavailable is returned when the clipboard holds nothing readable
// by the implementation.
var ErrUnavailable = errors.New("clipboard content unavailable")

// Clipboard is the OS clipboard access collaborator.
type Clipboard interface {
	// Read returns the current clipboard content.
	Read() (Content, error)

	// Write replaces the clipboard with the given text.
	Write(text string) error
}

// System reads and writes the OS clipboard. The underlying library is
// text-only; image-capable implementations satisfy the same interface.
type System struct{}

// NewSystem returns the system clipboard implementation.
func NewSystem() *System {
	return &System{}
}

// Read returns the current clipboard text.
func (s *System) Read() (Content, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return Content{}, fmt.Errorf("reading clipboard: %w", err)
	}
	return Content{Kind: KindText, Text: text}, nil
}

// Write replaces the clipboard with text.
func (s *System) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

package cliplist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/theme"
)

// previewWidth bounds the content preview in a list line.
const previewWidth = 60

// ClipItem wraps a model.ClipRecord so it can be used in a bubbles/list.
type ClipItem struct {
	Clip model.ClipRecord
}

// FilterValue returns the string used for fuzzy filtering.
func (i ClipItem) FilterValue() string { return i.Clip.Content }

// ItemDelegate renders history entries. The marked map is shared by
// reference with the cliplist Model so selection updates are visible.
type ItemDelegate struct {
	marked map[string]int
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single history line: pin marker, selection order,
// type badge, content preview, and capture time.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(ClipItem)
	if !ok {
		return
	}

	clip := ci.Clip
	isSelected := index == m.Index()

	pin := " "
	if clip.IsPinned {
		pin = theme.PinStyle.Render("★")
	}

	mark := "   "
	if n, ok := d.marked[clip.ID]; ok {
		mark = theme.MarkStyle.Render(fmt.Sprintf("[%d]", n))
	}

	badge := theme.ClipTypeStyle(string(clip.ClipType)).
		Render(strings.ToUpper(string(clip.ClipType))[:3])

	timeStr := theme.HelpStyle.Render(relativeTime(clip.CreatedAt))

	line := fmt.Sprintf(
		"%s %s %s %s  %s",
		pin, mark, badge, preview(clip.Content), timeStr,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// preview flattens content to a single truncated line.
func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= previewWidth {
		return s
	}
	return string(runes[:previewWidth-1]) + "…"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}

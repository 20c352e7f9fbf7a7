package clipboard

import (
	"context"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pastego/pastego/internal/classify"
	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/store"
)

// ClipChangedMsg is a tea.Msg sent when new clipboard content has been
// recorded in the history store.
type ClipChangedMsg struct {
	Clip *model.ClipRecord

	// Created is false when the content merged into an existing record.
	Created bool
}

// insertTimeout bounds a single store insert from the poll loop.
const insertTimeout = 5 * time.Second

// Watcher polls the OS clipboard and forwards new content to the
// history store. Duplicate suppression here is watcher-local: it only
// compares against the hash of the most recently observed content, so
// a static clipboard does not hit the store on every tick. Store-wide
// deduplication is the store's job.
type Watcher struct {
	store    store.Store
	clip     Clipboard
	interval time.Duration

	// SourceAppFn, when set, supplies a best-effort provenance label
	// for inserted records. Set before Start.
	SourceAppFn func() string

	resultCh chan ClipChangedMsg
	stopCh   chan struct{}

	mu            sync.Mutex
	running       bool
	lastTextHash  string
	lastImageHash string
	selfHash      string
}

// New creates a Watcher polling clip at the given interval.
func New(s store.Store, clip Clipboard, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Watcher{
		store:    s,
		clip:     clip,
		interval: interval,
		resultCh: make(chan ClipChangedMsg, 16),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a command that
// delivers the next ClipChangedMsg to the Bubble Tea runtime.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	go w.pollLoop()

	return w.waitForResult()
}

// Stop halts the polling goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	close(w.stopCh)
	w.running = false
}

// WriteText writes text to the OS clipboard on behalf of the user
// (e.g. copying a history entry or a generation result back out) and
// records its hash so the next poll does not re-insert content the
// watcher itself produced.
func (w *Watcher) WriteText(text string) error {
	if err := w.clip.Write(text); err != nil {
		return err
	}

	w.mu.Lock()
	w.selfHash = classify.HashText(text)
	w.mu.Unlock()

	return nil
}

// ReadText returns the current clipboard text, e.g. for feeding the
// quick-template generation path.
func (w *Watcher) ReadText() (string, error) {
	content, err := w.clip.Read()
	if err != nil {
		return "", err
	}
	if content.Kind != KindText {
		return "", ErrUnavailable
	}
	return content.Text, nil
}

// Events exposes the raw result channel for non-TUI consumers.
func (w *Watcher) Events() <-chan ClipChangedMsg {
	return w.resultCh
}

// WaitForNextResult returns a tea.Cmd that waits for the next change.
// Call again after processing a ClipChangedMsg to keep listening.
func (w *Watcher) WaitForNextResult() tea.Cmd {
	return w.waitForResult()
}

func (w *Watcher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-w.resultCh:
			return msg
		case <-w.stopCh:
			return nil
		}
	}
}

// pollLoop runs ticks until Stop.
func (w *Watcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Prime the last-seen hashes so pre-existing clipboard content at
	// startup is not re-inserted as new.
	w.prime()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Tick()
		}
	}
}

// prime records the current clipboard hash without inserting.
func (w *Watcher) prime() {
	content, err := w.clip.Read()
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch content.Kind {
	case KindText:
		if content.Text != "" {
			w.lastTextHash = classify.HashText(content.Text)
		}
	case KindImage:
		w.lastImageHash = classify.HashBytes(content.Image)
	}
}

// Tick performs one poll: read, compare against the last observed hash,
// and insert on change. Read failures are logged and skipped; the loop
// continues on the next tick.
func (w *Watcher) Tick() {
	content, err := w.clip.Read()
	if err != nil {
		log.Printf("clipboard read failed: %v", err)
		return
	}

	var payload classify.Payload
	var hash string

	switch content.Kind {
	case KindText:
		if classify.NormalizeText(content.Text) == "" {
			return
		}
		payload = classify.Payload{Text: content.Text}
		hash = classify.HashText(content.Text)
	case KindImage:
		if len(content.Image) == 0 {
			return
		}
		payload = classify.Payload{Image: content.Image}
		hash = classify.HashBytes(content.Image)
	default:
		return
	}

	if !w.observe(content.Kind, hash) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	sourceApp := ""
	if w.SourceAppFn != nil {
		sourceApp = w.SourceAppFn()
	}

	rec, created, err := w.store.InsertClip(ctx, payload, sourceApp)
	if err != nil {
		log.Printf("storing clipboard content failed: %v", err)
		return
	}

	w.sendResult(ClipChangedMsg{Clip: rec, Created: created})
}

// observe updates the watcher-local hash state and reports whether the
// content should be inserted. Content matching the hash the watcher
// itself wrote via WriteText is self-originated and suppressed.
func (w *Watcher) observe(kind ContentKind, hash string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	last := &w.lastTextHash
	if kind == KindImage {
		last = &w.lastImageHash
	}

	if hash == *last {
		return false
	}
	*last = hash

	if hash == w.selfHash {
		return false
	}
	return true
}

// sendResult delivers a change message without blocking the poll loop.
func (w *Watcher) sendResult(msg ClipChangedMsg) {
	select {
	case w.resultCh <- msg:
	default:
		// Drop if the consumer is not keeping up.
	}
}

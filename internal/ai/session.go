// Package ai runs streaming text-generation requests against configured
// providers, normalizing each provider family's wire format into one
// ordered sequence of fragment events per session.
package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pastego/pastego/internal/model"
)

// State describes where a generation session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

// StreamChunk is one event delivered to the generation consumer: zero
// or more fragments, then exactly one terminal chunk (Done set, or Err
// set). A cancelled session's terminal Err wraps context.Canceled.
type StreamChunk struct {
	Text string
	Done bool
	Err  error
}

// Session is one in-flight generation request. Fragments accumulate in
// an output buffer that survives failure and cancellation, so partial
// output can always be surfaced alongside the error.
type Session struct {
	events chan StreamChunk
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	output strings.Builder
}

// Events returns the session's ordered event stream. The channel is
// closed after the terminal event.
func (s *Session) Events() <-chan StreamChunk {
	return s.events
}

// Cancel aborts the session. Cooperative: in-flight frame decoding
// stops promptly and the connection is released; no fragments are
// delivered after the terminal event.
func (s *Session) Cancel() {
	s.cancel()
}

// Output returns the text accumulated so far. Valid in every state,
// including Failed and Cancelled.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.String()
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) append(text string) {
	s.mu.Lock()
	s.output.WriteString(text)
	s.mu.Unlock()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// emit delivers a chunk without risking an indefinite block: buffer
// room is used even after cancellation (so the terminal event still
// lands), and otherwise delivery waits only until the session context
// ends.
func (s *Session) emit(ctx context.Context, chunk StreamChunk) {
	select {
	case s.events <- chunk:
		return
	default:
	}
	select {
	case s.events <- chunk:
	case <-ctx.Done():
	}
}

// Generator starts sessions and enforces that at most one is streaming
// at a time per consumer context: starting a new session cancels the
// prior one first, so two streams can never interleave into one buffer.
type Generator struct {
	client *http.Client

	mu     sync.Mutex
	active *Session
}

// NewGenerator creates a Generator whose requests are bounded by the
// given timeout. The timeout is mandatory; zero falls back to a safe
// default so a stalled provider can never hang a session forever.
func NewGenerator(timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Generator{
		client: &http.Client{Timeout: timeout},
	}
}

// Start opens a streaming request for prompt against the provider and
// returns the new session. Any session still streaming is cancelled
// before the new one begins.
func (g *Generator) Start(
	ctx context.Context,
	p model.Provider,
	promptText string,
) (*Session, error) {
	if p.Endpoint == "" {
		return nil, errors.New("provider has no endpoint configured")
	}

	g.mu.Lock()
	if g.active != nil && g.active.State() == StateStreaming {
		g.active.Cancel()
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &Session{
		events: make(chan StreamChunk, 32),
		cancel: cancel,
		state:  StateStreaming,
	}
	g.active = sess
	g.mu.Unlock()

	go g.run(sessCtx, sess, p, promptText)

	return sess, nil
}

// run executes the request, dispatching on the provider's wire-protocol
// family, and delivers the terminal event.
func (g *Generator) run(
	ctx context.Context,
	sess *Session,
	p model.Provider,
	promptText string,
) {
	defer close(sess.events)

	emit := func(text string) {
		sess.append(text)
		sess.emit(ctx, StreamChunk{Text: text})
	}

	var err error
	switch p.Kind {
	case model.ProviderOpenAI, model.ProviderKimi, model.ProviderMinimax:
		err = g.streamOpenAI(ctx, p, promptText, emit)
	case model.ProviderClaude:
		err = g.streamClaude(ctx, p, promptText, emit)
	case model.ProviderOllama:
		err = g.streamOllama(ctx, p, promptText, emit)
	default:
		err = errors.New("unknown provider kind: " + string(p.Kind))
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			sess.setState(StateCancelled)
		} else {
			sess.setState(StateFailed)
		}
		sess.emit(ctx, StreamChunk{Err: err})
		return
	}

	sess.setState(StateCompleted)
	sess.emit(ctx, StreamChunk{Done: true})
}

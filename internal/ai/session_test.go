package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pastego/pastego/internal/model"
)

// collect drains a session's event stream, returning the fragments in
// order and the terminal chunk.
func collect(t *testing.T, sess *Session) ([]string, StreamChunk) {
	t.Helper()

	var fragments []string
	var terminal StreamChunk
	timeout := time.After(5 * time.Second)

	for {
		select {
		case chunk, ok := <-sess.Events():
			if !ok {
				return fragments, terminal
			}
			if chunk.Done || chunk.Err != nil {
				terminal = chunk
				continue
			}
			fragments = append(fragments, chunk.Text)
		case <-timeout:
			t.Fatal("timed out waiting for session events")
		}
	}
}

func sseServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
			flusher.Flush()
		}
	}))
}

func TestStreamOpenAIFragmentsInOrder(t *testing.T) {
	srv := sseServer(t,
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`data: {"choices":[{"delta":{"content":" world"}}]}`,
		`data: [DONE]`,
	)
	defer srv.Close()

	g := NewGenerator(time.Minute)
	sess, err := g.Start(context.Background(), model.Provider{
		Kind:     model.ProviderOpenAI,
		Endpoint: srv.URL + "/v1",
		Model:    "gpt-test",
		APIKey:   "sk-test",
	}, "say hello")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	fragments, terminal := collect(t, sess)
	if !terminal.Done {
		t.Fatalf("expected Done terminal, got %+v", terminal)
	}
	want := []string{"Hel", "lo", " world"}
	if len(fragments) != len(want) {
		t.Fatalf("got fragments %v, want %v", fragments, want)
	}
	for i := range want {
		if fragments[i] != want[i] {
			t.Errorf("fragment %d = %q, want %q", i, fragments[i], want[i])
		}
	}
	if got := sess.Output(); got != "Hello world" {
		t.Errorf("Output() = %q, want %q", got, "Hello world")
	}
	if sess.State() != StateCompleted {
		t.Errorf("state = %v, want StateCompleted", sess.State())
	}
}

func TestStreamOpenAISkipsMalformedFrames(t *testing.T) {
	srv := sseServer(t,
		`data: {"choices":[{"delta":{"content":"ok"}}]}`,
		`data: {not json`,
		`data: {"choices":[{"delta":{"content":"!"}}]}`,
		`data: [DONE]`,
	)
	defer srv.Close()

	g := NewGenerator(time.Minute)
	sess, err := g.Start(context.Background(), model.Provider{
		Kind:     model.ProviderKimi,
		Endpoint: srv.URL,
		Model:    "kimi-test",
	}, "prompt")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, terminal := collect(t, sess)
	if !terminal.Done {
		t.Fatalf("expected Done terminal, got %+v", terminal)
	}
	if got := sess.Output(); got != "ok!" {
		t.Errorf("Output() = %q, want %q", got, "ok!")
	}
}

func TestStreamClaudeTypedEvents(t *testing.T) {
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"type":"message_start"}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"text":"Bon"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"text":"jour"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"message_stop"}`+"\n\n")
	}))
	defer srv.Close()

	g := NewGenerator(time.Minute)
	sess, err := g.Start(context.Background(), model.Provider{
		Kind:     model.ProviderClaude,
		Endpoint: srv.URL + "/v1/",
		Model:    "claude-test",
		APIKey:   "sk-ant-test",
	}, "translate")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, terminal := collect(t, sess)
	if !terminal.Done {
		t.Fatalf("expected Done terminal, got %+v", terminal)
	}
	if got := sess.Output(); got != "Bonjour" {
		t.Errorf("Output() = %q, want %q", got, "Bonjour")
	}
	if gotKey != "sk-ant-test" {
		t.Errorf("x-api-key = %q, want %q", gotKey, "sk-ant-test")
	}
	if gotVersion != anthropicVersion {
		t.Errorf("anthropic-version = %q, want %q", gotVersion, anthropicVersion)
	}
}

func TestStreamOllamaNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"Hi","done":false}`)
		fmt.Fprintln(w, `{"response":" there","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}))
	defer srv.Close()

	g := NewGenerator(time.Minute)
	sess, err := g.Start(context.Background(), model.Provider{
		Kind:     model.ProviderOllama,
		Endpoint: srv.URL,
		Model:    "llama-test",
	}, "greet")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, terminal := collect(t, sess)
	if !terminal.Done {
		t.Fatalf("expected Done terminal, got %+v", terminal)
	}
	if got := sess.Output(); got != "Hi there" {
		t.Errorf("Output() = %q, want %q", got, "Hi there")
	}
}

func TestStartAuthErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGenerator(time.Minute)
	sess, err := g.Start(context.Background(), model.Provider{
		Kind:     model.ProviderOpenAI,
		Endpoint: srv.URL,
		Model:    "gpt-test",
		APIKey:   "bad-key",
	}, "prompt")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, terminal := collect(t, sess)
	if terminal.Err == nil {
		t.Fatal("expected error terminal")
	}
	if !IsAuthError(terminal.Err) {
		t.Errorf("IsAuthError(%v) = false, want true", terminal.Err)
	}
	var apiErr *APIError
	if !errors.As(terminal.Err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 APIError, got %v", terminal.Err)
	}
	if sess.State() != StateFailed {
		t.Errorf("state = %v, want StateFailed", sess.State())
	}
}

func TestCancelPreservesPartialOutput(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"partial"}}]}`+"\n\n")
		flusher.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g := NewGenerator(time.Minute)
	sess, err := g.Start(context.Background(), model.Provider{
		Kind:     model.ProviderOpenAI,
		Endpoint: srv.URL,
		Model:    "gpt-test",
	}, "prompt")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Wait for the first fragment before cancelling.
	select {
	case chunk := <-sess.Events():
		if chunk.Text != "partial" {
			t.Fatalf("first chunk = %+v, want partial fragment", chunk)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first fragment")
	}

	sess.Cancel()

	_, terminal := collect(t, sess)
	if terminal.Err == nil {
		t.Fatal("expected error terminal after cancel")
	}
	if sess.State() != StateCancelled {
		t.Errorf("state = %v, want StateCancelled", sess.State())
	}
	if got := sess.Output(); got != "partial" {
		t.Errorf("Output() = %q, want %q", got, "partial")
	}
}

func TestStartCancelsPriorSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"one"}}]}`+"\n\n")
		flusher.Flush()
		// Hang until the client walks away.
		<-r.Context().Done()
	}))
	defer srv.Close()

	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"two"}}]}`+"\n\n")
		fmt.Fprint(w, `data: [DONE]`+"\n\n")
	}))
	defer fast.Close()

	g := NewGenerator(time.Minute)
	p := model.Provider{Kind: model.ProviderOpenAI, Endpoint: srv.URL, Model: "m"}

	s1, err := g.Start(context.Background(), p, "first")
	if err != nil {
		t.Fatalf("Start s1: %v", err)
	}
	select {
	case <-s1.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for s1 fragment")
	}

	p2 := p
	p2.Endpoint = fast.URL
	s2, err := g.Start(context.Background(), p2, "second")
	if err != nil {
		t.Fatalf("Start s2: %v", err)
	}

	_, t1 := collect(t, s1)
	if t1.Err == nil {
		t.Error("expected s1 to end with a cancellation error")
	}
	if s1.State() != StateCancelled {
		t.Errorf("s1 state = %v, want StateCancelled", s1.State())
	}

	_, t2 := collect(t, s2)
	if !t2.Done {
		t.Fatalf("expected s2 Done terminal, got %+v", t2)
	}
	if got := s2.Output(); got != "two" {
		t.Errorf("s2 Output() = %q, want %q (streams must not interleave)", got, "two")
	}
	if got := s1.Output(); got != "one" {
		t.Errorf("s1 Output() = %q, want %q", got, "one")
	}
}

func TestStartRejectsMissingEndpoint(t *testing.T) {
	g := NewGenerator(time.Minute)
	if _, err := g.Start(context.Background(), model.Provider{Kind: model.ProviderOpenAI}, "p"); err == nil {
		t.Fatal("expected error for provider without endpoint")
	}
}

func TestUnknownProviderKindFails(t *testing.T) {
	g := NewGenerator(time.Minute)
	sess, err := g.Start(context.Background(), model.Provider{
		Kind:     model.ProviderKind("mystery"),
		Endpoint: "http://127.0.0.1:1",
	}, "p")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, terminal := collect(t, sess)
	if terminal.Err == nil {
		t.Fatal("expected error terminal for unknown kind")
	}
	if sess.State() != StateFailed {
		t.Errorf("state = %v, want StateFailed", sess.State())
	}
}

package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/pastego/pastego/internal/model"
)

// maxFrameSize bounds a single streamed line; frames beyond this are a
// connection-level failure.
const maxFrameSize = 1 << 20

// maxErrorBody bounds how much of a non-2xx response body is kept for
// the error message.
const maxErrorBody = 4096

// chatRequest is the OpenAI-compatible chat completions request body,
// also spoken by the kimi and minimax families.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatStreamFrame is one SSE data frame of a streamed chat completion.
type chatStreamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// streamOpenAI decodes the OpenAI-compatible SSE stream: "data: " lines
// carrying delta frames, terminated by a "[DONE]" sentinel.
func (g *Generator) streamOpenAI(
	ctx context.Context,
	p model.Provider,
	promptText string,
	emit func(string),
) error {
	url := strings.TrimRight(p.Endpoint, "/") + "/chat/completions"

	body := chatRequest{
		Model:    p.Model,
		Messages: []chatMessage{{Role: "user", Content: promptText}},
		Stream:   true,
	}

	resp, err := g.post(ctx, url, body, func(req *http.Request) {
		if p.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.APIKey)
		}
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := newFrameScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			return nil
		}

		var frame chatStreamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			// A single bad frame does not sink the stream.
			log.Printf("skipping malformed stream frame: %v", err)
			continue
		}
		if len(frame.Choices) > 0 && frame.Choices[0].Delta.Content != "" {
			emit(frame.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	return nil
}

// post sends a JSON request and maps non-2xx responses to APIError.
func (g *Generator) post(
	ctx context.Context,
	url string,
	body interface{},
	decorate func(*http.Request),
) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling provider: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	return resp, nil
}

// newFrameScanner returns a line scanner sized for streaming frames.
func newFrameScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)
	return scanner
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pastego/pastego/internal/model"
)

const (
	anthropicVersion = "2023-06-01"
	claudeMaxTokens  = 4096
)

// claudeRequest is the Anthropic Messages API request body.
type claudeRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
}

// claudeStreamFrame is one SSE data frame of a streamed message. The
// frames are typed; only delta and stop events matter here.
type claudeStreamFrame struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

// streamClaude decodes the Anthropic SSE stream: typed "data: " events,
// with content_block_delta carrying text and message_stop ending the
// stream.
func (g *Generator) streamClaude(
	ctx context.Context,
	p model.Provider,
	promptText string,
	emit func(string),
) error {
	url := strings.TrimRight(p.Endpoint, "/") + "/messages"

	body := claudeRequest{
		Model:     p.Model,
		MaxTokens: claudeMaxTokens,
		Messages:  []chatMessage{{Role: "user", Content: promptText}},
		Stream:    true,
	}

	resp, err := g.post(ctx, url, body, func(req *http.Request) {
		req.Header.Set("x-api-key", p.APIKey)
		req.Header.Set("anthropic-version", anthropicVersion)
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

		var frame claudeStreamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			log.Printf("skipping malformed stream frame: %v", err)
			continue
		}

		switch frame.Type {
		case "content_block_delta":
			if frame.Delta.Text != "" {
				emit(frame.Delta.Text)
			}
		case "message_stop":
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	return nil
}

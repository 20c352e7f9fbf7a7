package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/pastego/pastego/internal/model"
)

// ollamaRequest is the Ollama generate API request body.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaStreamFrame is one NDJSON line of a streamed generation.
type ollamaStreamFrame struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// streamOllama decodes the Ollama NDJSON stream: one JSON object per
// line, each carrying response text, with done flagging the last. No
// authentication; ollama is a local provider.
func (g *Generator) streamOllama(
	ctx context.Context,
	p model.Provider,
	promptText string,
	emit func(string),
) error {
	url := strings.TrimRight(p.Endpoint, "/") + "/api/generate"

	body := ollamaRequest{
		Model:  p.Model,
		Prompt: promptText,
		Stream: true,
	}

	resp, err := g.post(ctx, url, body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := newFrameScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var frame ollamaStreamFrame
		if err := json.Unmarshal([]byte(line), &frame); err != nil {
			log.Printf("skipping malformed stream frame: %v", err)
			continue
		}

		if frame.Response != "" {
			emit(frame.Response)
		}
		if frame.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	return nil
}

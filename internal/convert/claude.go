// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const defaultClaudeMaxTokens = 16000

// ClaudeConverter sends the PDF to the Claude Messages API as a base64
// document block followed by the conversion prompt.
type ClaudeConverter struct {
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
	Log       *zap.Logger
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string        `json:"role"`
	Content []claudeBlock `json:"content"`
}

// claudeBlock is a request content block: either text or a document.
type claudeBlock struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Source *claudeSource `json:"source,omitempty"`
}

// claudeSource carries inline document data.
type claudeSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Convert calls the Claude API once with the document and prompt.
func (c *ClaudeConverter) Convert(ctx context.Context, doc Document) (string, error) {
	text, err := c.convert(ctx, doc)
	if err != nil {
		return "", &ConversionError{Provider: types.ProviderClaude, Err: err}
	}
	return text, nil
}

func (c *ClaudeConverter) convert(ctx context.Context, doc Document) (string, error) {
	prompt, err := renderPrompt(doc.Tokens)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		Messages: []claudeMessage{
			{
				Role: "user",
				Content: []claudeBlock{
					{
						Type: "document",
						Source: &claudeSource{
							Type:      "base64",
							MediaType: doc.MIMEType,
							Data:      base64.StdEncoding.EncodeToString(doc.Data),
						},
					},
					{Type: "text", Text: prompt},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	c.logger().Debug("calling Claude API",
		zap.String("model", c.Model),
		zap.String("document", doc.Name),
		zap.Int("tokens", len(doc.Tokens)))

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var b strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	if cResp.StopReason == "max_tokens" {
		c.logger().Warn("Claude response truncated at max_tokens", zap.Int("max_tokens", maxTokens))
	}

	return trimFence(b.String()), nil
}

func (c *ClaudeConverter) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

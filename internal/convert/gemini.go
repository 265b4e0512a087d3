// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

// geminiBaseURL overrides the Gemini endpoint. Package-level var for test substitution.
var geminiBaseURL = ""

// GeminiConverter sends the PDF inline to the Gemini API together with the
// conversion prompt.
type GeminiConverter struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiConverter creates a Gemini client for cfg. The given HTTP client
// carries the transport timeout; nil uses the SDK default.
func NewGeminiConverter(ctx context.Context, cfg types.AIConfig, httpClient *http.Client, log *zap.Logger) (*GeminiConverter, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if geminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(types.ProviderGemini)
	}
	return &GeminiConverter{client: client, model: model, log: log}, nil
}

// Convert calls GenerateContent once with the document bytes and prompt.
func (g *GeminiConverter) Convert(ctx context.Context, doc Document) (string, error) {
	prompt, err := renderPrompt(doc.Tokens)
	if err != nil {
		return "", &ConversionError{Provider: types.ProviderGemini, Err: fmt.Errorf("rendering prompt: %w", err)}
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(doc.Data, doc.MIMEType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	g.log.Debug("calling Gemini API",
		zap.String("model", g.model),
		zap.String("document", doc.Name),
		zap.Int("bytes", len(doc.Data)),
		zap.Int("tokens", len(doc.Tokens)))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", &ConversionError{Provider: types.ProviderGemini, Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ConversionError{Provider: types.ProviderGemini, Err: fmt.Errorf("empty response from model %s", g.model)}
	}
	return trimFence(text), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDF documents into Markdown through a Generative AI
// document-understanding API. Backends are pluggable; the caller supplies the
// placeholder tokens the model must position where images belong.
package convert

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

// Document is the input to a Converter.
type Document struct {
	// Name is the source file name, used in logs and errors.
	Name string

	// Data is the raw document content.
	Data []byte

	// MIMEType describes Data (normally application/pdf).
	MIMEType string

	// Tokens are the image placeholders to position, in page order.
	Tokens []string
}

// Converter transforms a document into Markdown text. Different backends
// (Gemini, Claude) implement this interface.
type Converter interface {
	// Convert sends doc to the backend and returns the Markdown it produces.
	Convert(ctx context.Context, doc Document) (string, error)
}

// ConversionError reports a failed call to the AI backend.
type ConversionError struct {
	Provider types.AIProvider
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s conversion failed: %v", e.Provider, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// defaultModels holds the model used when ai.model is unset.
var defaultModels = map[types.AIProvider]string{
	types.ProviderGemini: "gemini-2.5-flash",
	types.ProviderClaude: "claude-sonnet-4-5-20250929",
}

// DefaultModel returns the default model for p, or "" if p is unknown.
func DefaultModel(p types.AIProvider) string {
	return defaultModels[p]
}

// New builds the Converter selected by cfg.Provider.
func New(ctx context.Context, cfg types.AIConfig, client *http.Client, log *zap.Logger) (Converter, error) {
	if cfg.Provider == "" {
		cfg.Provider = types.ProviderGemini
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	switch cfg.Provider {
	case types.ProviderGemini, types.ProviderClaude:
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want gemini or claude)", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s (set ai.api_key or the matching .secrets/ file)", cfg.Provider)
	}

	if cfg.Provider == types.ProviderClaude {
		return &ClaudeConverter{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Client:    client,
			Log:       log,
		}, nil
	}
	return NewGeminiConverter(ctx, cfg, client, log)
}

// trimFence removes a single Markdown code fence wrapping the whole
// response, which models often add despite being asked not to. The outer
// pair must be the only fence in the text; a reply that opens and closes
// with separate code blocks is returned unchanged.
func trimFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return text
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return text
	}
	lang := strings.TrimSpace(s[3:nl])
	if lang != "" && lang != "markdown" && lang != "md" {
		return text
	}
	body := strings.TrimSuffix(s[nl+1:], "```")
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			return text
		}
	}
	return strings.TrimRight(body, "\n") + "\n"
}

// Frontmatter is the metadata block written ahead of locally saved Markdown.
type Frontmatter struct {
	SourcePDF   string    `yaml:"source_pdf"`
	ConvertedAt time.Time `yaml:"converted_at"`
	Provider    string    `yaml:"provider"`
	Model       string    `yaml:"model,omitempty"`
	Images      int       `yaml:"images"`
}

// WithFrontmatter prepends meta as YAML frontmatter to body.
func WithFrontmatter(meta Frontmatter, body string) (string, error) {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}

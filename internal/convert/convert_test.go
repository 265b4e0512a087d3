// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

func testDoc() Document {
	return Document{
		Name:     "report.pdf",
		Data:     []byte("%PDF-1.4 fake"),
		MIMEType: types.MIMETypePDF,
		Tokens:   []string{"[IMAGE_1_0]", "[IMAGE_2_0]"},
	}
}

func TestRenderPrompt(t *testing.T) {
	prompt, err := renderPrompt([]string{"[IMAGE_1_0]", "[IMAGE_3_1]"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Markdown")
	assert.Contains(t, prompt, "tables")
	assert.Contains(t, prompt, "block quotes")
	assert.Contains(t, prompt, "[IMAGE_1_0]\n[IMAGE_3_1]\n")
	assert.Less(t, strings.Index(prompt, "[IMAGE_1_0]\n"), strings.Index(prompt, "[IMAGE_3_1]\n"))
}

func TestRenderPromptNoImages(t *testing.T) {
	prompt, err := renderPrompt(nil)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "placeholder")
	assert.Contains(t, prompt, "Respond with the Markdown only")
}

func TestTrimFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"markdown fence", "```markdown\n# Title\n\nBody\n```", "# Title\n\nBody\n"},
		{"md fence with padding", "\n```md\n# T\n```\n", "# T\n"},
		{"bare fence", "```\n# T\n```", "# T\n"},
		{"other language untouched", "```go\nfunc x() {}\n```", "```go\nfunc x() {}\n```"},
		{"no fence", "# Title\n", "# Title\n"},
		{"inner fence kept", "# T\n\n```go\nx\n```\n", "# T\n\n```go\nx\n```\n"},
		{"leading and trailing code blocks untouched", "```\nmake build\n```\n\nSome prose.\n\n```\nmake test\n```", "```\nmake build\n```\n\nSome prose.\n\n```\nmake test\n```"},
		{"wrapping fence around inner code block untouched", "```markdown\n# T\n\n```go\nx\n```\n```", "```markdown\n# T\n\n```go\nx\n```\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trimFence(tt.in))
		})
	}
}

func TestClaudeConverter(t *testing.T) {
	var got claudeRequest
	var headers http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"content":[{"type":"text","text":"# Report\n\n[IMAGE_1_0]\n"}],"stop_reason":"end_turn"}`)
	}))
	defer ts.Close()

	orig := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() { claudeAPIURL = orig })

	c := &ClaudeConverter{APIKey: "sk-test", Model: "test-model", Client: ts.Client(), Log: zaptest.NewLogger(t)}
	md, err := c.Convert(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\n[IMAGE_1_0]\n", md)

	assert.Equal(t, "sk-test", headers.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", headers.Get("anthropic-version"))
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, defaultClaudeMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 2)

	docBlock := got.Messages[0].Content[0]
	assert.Equal(t, "document", docBlock.Type)
	require.NotNil(t, docBlock.Source)
	assert.Equal(t, "application/pdf", docBlock.Source.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake")), docBlock.Source.Data)

	textBlock := got.Messages[0].Content[1]
	assert.Equal(t, "text", textBlock.Type)
	assert.Contains(t, textBlock.Text, "[IMAGE_2_0]")
}

func TestClaudeConverterErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"auth failure", http.StatusUnauthorized, `{"error":"bad key"}`, "401"},
		{"quota", http.StatusTooManyRequests, `{"error":"rate limited"}`, "429"},
		{"empty content", http.StatusOK, `{"content":[]}`, "no text content"},
		{"bad json", http.StatusOK, `not json`, "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			orig := claudeAPIURL
			claudeAPIURL = ts.URL
			t.Cleanup(func() { claudeAPIURL = orig })

			c := &ClaudeConverter{APIKey: "k", Model: "m", Client: ts.Client()}
			_, err := c.Convert(context.Background(), testDoc())
			require.Error(t, err)

			var convErr *ConversionError
			require.True(t, errors.As(err, &convErr))
			assert.Equal(t, types.ProviderClaude, convErr.Provider)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, 1, calls, "conversion must not retry")
		})
	}
}

func TestGeminiConverter(t *testing.T) {
	var body string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"`+"```markdown\\n# Report\\n\\n[IMAGE_1_0]\\n```"+`"}]},"finishReason":"STOP"}]}`)
	}))
	defer ts.Close()

	orig := geminiBaseURL
	geminiBaseURL = ts.URL + "/"
	t.Cleanup(func() { geminiBaseURL = orig })

	g, err := NewGeminiConverter(context.Background(), types.AIConfig{APIKey: "g-test", Model: "gemini-test"}, ts.Client(), zaptest.NewLogger(t))
	require.NoError(t, err)

	md, err := g.Convert(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\n[IMAGE_1_0]\n", md)

	assert.Contains(t, body, "application/pdf")
	assert.Contains(t, body, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake")))
	assert.Contains(t, body, "[IMAGE_2_0]")
}

func TestGeminiConverterError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer ts.Close()

	orig := geminiBaseURL
	geminiBaseURL = ts.URL + "/"
	t.Cleanup(func() { geminiBaseURL = orig })

	g, err := NewGeminiConverter(context.Background(), types.AIConfig{APIKey: "bad"}, ts.Client(), nil)
	require.NoError(t, err)

	_, err = g.Convert(context.Background(), testDoc())
	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, types.ProviderGemini, convErr.Provider)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, types.AIConfig{Provider: "openai", APIKey: "k"}, nil, nil)
	assert.ErrorContains(t, err, "unknown AI provider")

	_, err = New(ctx, types.AIConfig{Provider: types.ProviderClaude}, nil, nil)
	assert.ErrorContains(t, err, "no API key")

	c, err := New(ctx, types.AIConfig{Provider: types.ProviderClaude, APIKey: "k"}, nil, nil)
	require.NoError(t, err)
	claude, ok := c.(*ClaudeConverter)
	require.True(t, ok)
	assert.Equal(t, DefaultModel(types.ProviderClaude), claude.Model)

	c, err = New(ctx, types.AIConfig{APIKey: "k"}, nil, nil)
	require.NoError(t, err)
	gem, ok := c.(*GeminiConverter)
	require.True(t, ok)
	assert.Equal(t, DefaultModel(types.ProviderGemini), gem.model)
}

func TestWithFrontmatter(t *testing.T) {
	meta := Frontmatter{
		SourcePDF:   "docs/report.pdf",
		ConvertedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Provider:    "gemini",
		Images:      2,
	}
	out, err := WithFrontmatter(meta, "# Report\n")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.Contains(t, out, "source_pdf: docs/report.pdf\n")
	assert.Contains(t, out, "converted_at: 2026-01-02T03:04:05Z\n")
	assert.Contains(t, out, "images: 2\n")
	assert.NotContains(t, out, "model:")
	assert.True(t, strings.HasSuffix(out, "---\n\n# Report\n"))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki creates pages on a Wiki.js instance through its GraphQL API.
package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

// createPageMutation is the pages.create mutation with every field passed as
// a variable.
const createPageMutation = `mutation CreatePage($content: String!, $description: String!, $editor: String!, $isPublished: Boolean!, $isPrivate: Boolean!, $locale: String!, $path: String!, $tags: [String]!, $title: String!) {
  pages {
    create(content: $content, description: $description, editor: $editor, isPublished: $isPublished, isPrivate: $isPrivate, locale: $locale, path: $path, tags: $tags, title: $title) {
      responseResult {
        succeeded
        errorCode
        slug
        message
      }
      page {
        id
        path
        title
      }
    }
  }
}`

// Publisher creates wiki pages. *Client implements it; tests use fakes.
type Publisher interface {
	CreatePage(ctx context.Context, req types.PublishRequest) (*PageResult, error)
	PageURL(locale, path string) string
}

// PageResult is the created page as reported by the wiki.
type PageResult struct {
	ID      int
	Path    string
	Title   string
	Message string
}

// TransportError reports a failure to reach the wiki or to read its reply.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("wiki request failed with HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("wiki request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FieldError is one GraphQL error entry, with the response path it refers to.
type FieldError struct {
	Message string
	Path    string
}

// ApplicationError reports a request the wiki understood but refused.
type ApplicationError struct {
	Message     string
	Code        int
	Slug        string
	FieldErrors []FieldError
}

func (e *ApplicationError) Error() string {
	var b strings.Builder
	b.WriteString("wiki rejected page: ")
	b.WriteString(e.Message)
	if e.Slug != "" || e.Code != 0 {
		fmt.Fprintf(&b, " (%s, code %d)", e.Slug, e.Code)
	}
	for _, fe := range e.FieldErrors {
		b.WriteString("\n  - ")
		if fe.Path != "" {
			b.WriteString(fe.Path)
			b.WriteString(": ")
		}
		b.WriteString(fe.Message)
	}
	return b.String()
}

// Client talks to one wiki instance.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Log     *zap.Logger
}

// NewClient returns a client for cfg. A nil http.Client uses
// http.DefaultClient.
func NewClient(cfg types.WikiConfig, httpClient *http.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(cfg.URL, "/"),
		Token:   cfg.Token,
		HTTP:    httpClient,
		Log:     log,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

type createResponse struct {
	Data *struct {
		Pages struct {
			Create struct {
				ResponseResult struct {
					Succeeded bool   `json:"succeeded"`
					ErrorCode int    `json:"errorCode"`
					Slug      string `json:"slug"`
					Message   string `json:"message"`
				} `json:"responseResult"`
				Page *struct {
					ID    int    `json:"id"`
					Path  string `json:"path"`
					Title string `json:"title"`
				} `json:"page"`
			} `json:"create"`
		} `json:"pages"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// CreatePage sends the pages.create mutation once and reports the outcome.
func (c *Client) CreatePage(ctx context.Context, req types.PublishRequest) (*PageResult, error) {
	if c.BaseURL == "" {
		return nil, &TransportError{Err: fmt.Errorf("wiki URL is not configured")}
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	payload := graphQLRequest{
		Query: createPageMutation,
		Variables: map[string]any{
			"title":       req.Title,
			"content":     req.Content,
			"path":        req.Path,
			"description": req.Description,
			"editor":      orDefault(req.Editor, types.EditorMarkdown),
			"locale":      orDefault(req.Locale, types.DefaultLocale),
			"isPublished": req.IsPublished,
			"isPrivate":   req.IsPrivate,
			"tags":        tags,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling GraphQL request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	c.Log.Debug("creating wiki page",
		zap.String("path", req.Path),
		zap.String("title", req.Title),
		zap.Int("content_bytes", len(req.Content)))

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", snippet(raw))}
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(out.Errors) > 0 {
		appErr := &ApplicationError{Message: out.Errors[0].Message}
		for _, e := range out.Errors {
			appErr.FieldErrors = append(appErr.FieldErrors, FieldError{Message: e.Message, Path: joinPath(e.Path)})
		}
		return nil, appErr
	}

	if out.Data == nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", snippet(raw))}
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response has neither data nor errors")}
	}

	create := out.Data.Pages.Create
	rr := create.ResponseResult
	if !rr.Succeeded {
		return nil, &ApplicationError{Message: rr.Message, Code: rr.ErrorCode, Slug: rr.Slug}
	}

	result := &PageResult{Path: req.Path, Title: req.Title, Message: rr.Message}
	if create.Page != nil {
		result.ID = create.Page.ID
		if create.Page.Path != "" {
			result.Path = create.Page.Path
		}
		if create.Page.Title != "" {
			result.Title = create.Page.Title
		}
	}
	return result, nil
}

// PageURL returns the browser URL of the page at path.
func (c *Client) PageURL(locale, path string) string {
	locale = orDefault(locale, types.DefaultLocale)
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.BaseURL + "/" + locale + "/" + strings.Join(segments, "/")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func joinPath(path []any) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

// snippet trims a response body for inclusion in an error message.
func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty response body"
	}
	return s
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

func testRequest() types.PublishRequest {
	return types.PublishRequest{
		Title:       "Quarterly Report",
		Path:        "imports/quarterly-report",
		Content:     "# Quarterly Report\n",
		Description: "Imported from quarterly-report.pdf",
		Editor:      types.EditorMarkdown,
		Locale:      "en",
		IsPublished: true,
		IsPrivate:   false,
		Tags:        []string{"pdf", "import"},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(types.WikiConfig{URL: ts.URL + "/", Token: "wiki-token"}, ts.Client(), zaptest.NewLogger(t))
	return c, &calls
}

func TestCreatePage(t *testing.T) {
	var gotReq graphQLRequest
	var gotAuth, gotPath string

	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"pages":{"create":{"responseResult":{"succeeded":true,"errorCode":0,"slug":"ok","message":"Page created."},"page":{"id":42,"path":"imports/quarterly-report","title":"Quarterly Report"}}}}}`)
	})

	res, err := c.CreatePage(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, &PageResult{ID: 42, Path: "imports/quarterly-report", Title: "Quarterly Report", Message: "Page created."}, res)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, "Bearer wiki-token", gotAuth)
	assert.Equal(t, "/graphql", gotPath)

	assert.Contains(t, gotReq.Query, "pages {")
	assert.Contains(t, gotReq.Query, "create(")
	v := gotReq.Variables
	assert.Equal(t, "Quarterly Report", v["title"])
	assert.Equal(t, "# Quarterly Report\n", v["content"])
	assert.Equal(t, "imports/quarterly-report", v["path"])
	assert.Equal(t, "Imported from quarterly-report.pdf", v["description"])
	assert.Equal(t, "markdown", v["editor"])
	assert.Equal(t, "en", v["locale"])
	assert.Equal(t, true, v["isPublished"])
	assert.Equal(t, false, v["isPrivate"])
	assert.Equal(t, []any{"pdf", "import"}, v["tags"])
}

func TestCreatePageDefaults(t *testing.T) {
	var gotReq graphQLRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		io.WriteString(w, `{"data":{"pages":{"create":{"responseResult":{"succeeded":true,"message":"ok"},"page":null}}}}`)
	})

	req := testRequest()
	req.Editor = ""
	req.Locale = ""
	req.Tags = nil

	res, err := c.CreatePage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.Path, res.Path, "falls back to requested path")
	assert.Equal(t, "markdown", gotReq.Variables["editor"])
	assert.Equal(t, "en", gotReq.Variables["locale"])
	assert.Equal(t, []any{}, gotReq.Variables["tags"])
}

func TestCreatePageApplicationErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantFields int
	}{
		{
			name:    "succeeded false",
			status:  http.StatusOK,
			body:    `{"data":{"pages":{"create":{"responseResult":{"succeeded":false,"errorCode":6002,"slug":"PageDuplicateCreate","message":"path already exists"},"page":null}}}}`,
			wantMsg: "path already exists",
		},
		{
			name:       "graphql errors",
			status:     http.StatusOK,
			body:       `{"errors":[{"message":"Variable \"$title\" of required type \"String!\" was not provided.","path":["pages","create"]},{"message":"Forbidden"}]}`,
			wantMsg:    "was not provided",
			wantFields: 2,
		},
		{
			name:       "graphql errors on 400",
			status:     http.StatusBadRequest,
			body:       `{"errors":[{"message":"Syntax Error"}]}`,
			wantMsg:    "Syntax Error",
			wantFields: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			res, err := c.CreatePage(context.Background(), testRequest())
			require.Error(t, err)
			assert.Nil(t, res)

			var appErr *ApplicationError
			require.True(t, errors.As(err, &appErr), "want ApplicationError, got %T: %v", err, err)
			assert.Contains(t, appErr.Message, tt.wantMsg)
			assert.Len(t, appErr.FieldErrors, tt.wantFields)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "publish must not retry")
		})
	}
}

func TestApplicationErrorMessage(t *testing.T) {
	err := &ApplicationError{
		Message: "bad input",
		FieldErrors: []FieldError{
			{Message: "title required", Path: "pages.create"},
			{Message: "forbidden"},
		},
	}
	assert.Equal(t, "wiki rejected page: bad input\n  - pages.create: title required\n  - forbidden", err.Error())

	dup := &ApplicationError{Message: "path already exists", Code: 6002, Slug: "PageDuplicateCreate"}
	assert.Equal(t, "wiki rejected page: path already exists (PageDuplicateCreate, code 6002)", dup.Error())
}

func TestCreatePageTransportErrors(t *testing.T) {
	t.Run("server error with html body", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, "<html>bad gateway</html>")
		})
		_, err := c.CreatePage(context.Background(), testRequest())
		var tErr *TransportError
		require.True(t, errors.As(err, &tErr))
		assert.Equal(t, http.StatusBadGateway, tErr.StatusCode)
		assert.Contains(t, err.Error(), "bad gateway")
	})

	t.Run("unreachable host", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		c := NewClient(types.WikiConfig{URL: url}, nil, nil)
		_, err := c.CreatePage(context.Background(), testRequest())
		var tErr *TransportError
		require.True(t, errors.As(err, &tErr))
		assert.Zero(t, tErr.StatusCode)
	})

	t.Run("missing url", func(t *testing.T) {
		c := NewClient(types.WikiConfig{}, nil, nil)
		_, err := c.CreatePage(context.Background(), testRequest())
		var tErr *TransportError
		require.True(t, errors.As(err, &tErr))
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("empty json object", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, `{}`)
		})
		_, err := c.CreatePage(context.Background(), testRequest())
		var tErr *TransportError
		require.True(t, errors.As(err, &tErr))
	})
}

func TestPageURL(t *testing.T) {
	c := NewClient(types.WikiConfig{URL: "https://wiki.example.com/"}, nil, nil)
	assert.Equal(t, "https://wiki.example.com/en/imports/quarterly-report", c.PageURL("", "imports/quarterly-report"))
	assert.Equal(t, "https://wiki.example.com/de/a%20b/c", c.PageURL("de", "/a b/c/"))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preview renders converted Markdown to a standalone HTML page so a
// conversion can be checked locally before it is published.
package preview

import (
	"bytes"
	"fmt"
	stdhtml "html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// newEngine builds a goldmark instance with GFM tables, strikethrough and
// task lists enabled. Raw HTML is passed through because wiki pages allow it.
func newEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Render converts markdown to an HTML fragment.
func Render(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := newEngine().Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// Page wraps the rendered markdown in a minimal HTML document titled title.
func Page(title, markdown string) ([]byte, error) {
	body, err := Render(markdown)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", stdhtml.EscapeString(title))
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

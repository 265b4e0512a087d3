// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one PDF through extraction, AI conversion,
// placeholder resolution and wiki publishing. Every step completes before the
// next starts; nothing is retried and nothing outlives the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-slug"
	"go.uber.org/zap"

	"github.com/pdiddy/pdf2wiki/internal/convert"
	"github.com/pdiddy/pdf2wiki/internal/pdfimage"
	"github.com/pdiddy/pdf2wiki/internal/placeholder"
	"github.com/pdiddy/pdf2wiki/internal/wiki"
	"github.com/pdiddy/pdf2wiki/pkg/types"
)

// ErrReported marks an error whose details were already written to the
// status writer. Callers match it with errors.Is to avoid repeating them;
// the underlying cause stays reachable through errors.As.
var ErrReported = errors.New("already reported")

// reported wraps err with ErrReported.
func reported(err error) error {
	return fmt.Errorf("%w: %w", ErrReported, err)
}

// Extractor pulls images out of a PDF. *pdfimage.Extractor implements it.
type Extractor interface {
	Extract(path string) ([]types.ImageRecord, error)
}

// OpenFunc opens a URL for the user, normally in a browser.
type OpenFunc func(url string) error

// Pipeline wires the collaborators for one run.
type Pipeline struct {
	Extractor Extractor
	Converter convert.Converter
	Publisher wiki.Publisher
	Open      OpenFunc
	Config    types.Config

	// Inspect reports document metadata; nil skips it.
	Inspect func(path string) (pdfimage.DocumentInfo, error)

	// Status receives progress lines; Output receives the final Markdown.
	Status io.Writer
	Output io.Writer

	Log *zap.Logger
}

// Conversion is the result of converting one PDF.
type Conversion struct {
	Source string
	Pages  int
	Images []types.ImageRecord
	Tokens []string

	// Raw is the converter output before placeholder resolution.
	Raw string

	// Markdown is the final document with images inlined.
	Markdown string

	// Dropped lists image tokens the converter never placed.
	Dropped []string

	// Unknown lists token-shaped text left in Markdown with no matching image.
	Unknown []string
}

// Outcome is the result of a publish run.
type Outcome struct {
	Status     types.ConversionStatus
	Conversion *Conversion
	Request    types.PublishRequest
	Page       *wiki.PageResult
	URL        string
}

// Convert extracts images from the PDF at pdfPath, asks the converter for
// Markdown with image placeholders, and resolves the placeholders.
func (p *Pipeline) Convert(ctx context.Context, pdfPath string) (*Conversion, error) {
	log := p.logger()
	status := p.statusWriter()
	name := filepath.Base(pdfPath)

	images, err := p.Extractor.Extract(pdfPath)
	if err != nil {
		fmt.Fprintf(status, "failed:    %s (%v)\n", name, err)
		return nil, reported(err)
	}

	conv := &Conversion{Source: pdfPath, Images: images}

	if p.Inspect != nil {
		info, err := p.Inspect(pdfPath)
		if err != nil {
			log.Warn("could not read page count", zap.String("path", pdfPath), zap.Error(err))
		} else {
			conv.Pages = info.Pages
		}
	}

	conv.Tokens = placeholder.Tokens(images)
	index := placeholder.Index(images)
	fmt.Fprintf(status, "extracted: %s (%d image(s)%s)\n", name, len(images), pagesSuffix(conv.Pages))

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		openErr := &pdfimage.DocumentOpenError{Path: pdfPath, Err: err}
		fmt.Fprintf(status, "failed:    %s (%v)\n", name, openErr)
		return nil, reported(openErr)
	}

	raw, err := p.Converter.Convert(ctx, convert.Document{
		Name:     name,
		Data:     data,
		MIMEType: types.MIMETypePDF,
		Tokens:   conv.Tokens,
	})
	if err != nil {
		fmt.Fprintf(status, "failed:    %s (%v)\n", name, err)
		return nil, reported(err)
	}
	conv.Raw = raw

	conv.Dropped = placeholder.Missing(raw, index)
	conv.Markdown = placeholder.Resolve(raw, index)
	conv.Unknown = placeholder.Unresolved(conv.Markdown)

	if len(conv.Dropped) > 0 {
		log.Warn("converter did not place some images; they are dropped",
			zap.Strings("tokens", conv.Dropped))
	}
	if len(conv.Unknown) > 0 {
		log.Warn("converter produced placeholders with no matching image",
			zap.Strings("tokens", conv.Unknown))
	}

	fmt.Fprintf(status, "converted: %s (%d of %d image(s) placed)\n", name, len(images)-len(conv.Dropped), len(images))
	return conv, nil
}

// Publish converts the PDF, prints the final Markdown, creates the wiki
// page and opens it. Publish failures are reported on the status writer and
// returned; no browser is opened for them.
func (p *Pipeline) Publish(ctx context.Context, pdfPath string) (*Outcome, error) {
	status := p.statusWriter()
	out := &Outcome{Status: types.StatusFailed}

	conv, err := p.Convert(ctx, pdfPath)
	if err != nil {
		return out, err
	}
	out.Conversion = conv
	out.Status = types.StatusConverted

	if p.Output != nil {
		fmt.Fprintln(p.Output, conv.Markdown)
	}

	out.Request = BuildRequest(pdfPath, conv.Markdown, p.Config.Wiki)

	page, err := p.Publisher.CreatePage(ctx, out.Request)
	if err != nil {
		reportPublishError(status, out.Request.Path, err)
		return out, reported(err)
	}

	out.Page = page
	out.Status = types.StatusPublished
	out.URL = p.Publisher.PageURL(out.Request.Locale, page.Path)
	fmt.Fprintf(status, "published: %s -> %s\n", page.Path, out.URL)

	if p.Config.OpenBrowser && p.Open != nil {
		if err := p.Open(out.URL); err != nil {
			p.logger().Warn("could not open browser", zap.String("url", out.URL), zap.Error(err))
		}
	}
	return out, nil
}

// reportPublishError writes the wiki's verdict verbatim to w.
func reportPublishError(w io.Writer, path string, err error) {
	var appErr *wiki.ApplicationError
	var transportErr *wiki.TransportError
	switch {
	case errors.As(err, &appErr):
		fmt.Fprintf(w, "publish failed: %s: %s\n", path, appErr.Message)
		for _, fe := range appErr.FieldErrors {
			if fe.Path != "" {
				fmt.Fprintf(w, "  - %s: %s\n", fe.Path, fe.Message)
			} else {
				fmt.Fprintf(w, "  - %s\n", fe.Message)
			}
		}
	case errors.As(err, &transportErr):
		fmt.Fprintf(w, "publish failed: %s: could not reach wiki: %v\n", path, transportErr)
	default:
		fmt.Fprintf(w, "publish failed: %s: %v\n", path, err)
	}
}

// BuildRequest assembles the page creation request for pdfPath. The title is
// the file name without extension; the page path is the configured parent
// path joined with a slug of the title.
func BuildRequest(pdfPath, markdown string, cfg types.WikiConfig) types.PublishRequest {
	base := filepath.Base(pdfPath)
	title := strings.TrimSuffix(base, filepath.Ext(base))

	description := cfg.Description
	if description == "" {
		description = fmt.Sprintf("Converted from %s", base)
	}

	locale := cfg.Locale
	if locale == "" {
		locale = types.DefaultLocale
	}

	tags := make([]string, len(cfg.Tags))
	copy(tags, cfg.Tags)

	return types.PublishRequest{
		Title:       title,
		Path:        PagePath(cfg.Path, title),
		Content:     markdown,
		Description: description,
		Editor:      types.EditorMarkdown,
		Locale:      locale,
		IsPublished: cfg.Published,
		IsPrivate:   cfg.Private,
		Tags:        tags,
	}
}

// PagePath joins parent and a slug of title into a wiki page path.
func PagePath(parent, title string) string {
	s, err := slug.Normalize(title)
	if err != nil || s == "" {
		s = fallbackSlug(title)
	}
	parent = strings.Trim(parent, "/")
	if parent == "" {
		return s
	}
	return parent + "/" + s
}

// fallbackSlug lowercases title and collapses anything that is not a letter
// or digit into single hyphens.
func fallbackSlug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "untitled"
	}
	return s
}

func pagesSuffix(pages int) string {
	if pages <= 0 {
		return ""
	}
	return fmt.Sprintf(", %d page(s)", pages)
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *Pipeline) statusWriter() io.Writer {
	if p.Status == nil {
		return io.Discard
	}
	return p.Status
}

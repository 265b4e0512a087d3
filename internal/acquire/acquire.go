// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire turns the document argument into a local PDF path. Local
// paths pass through untouched; http(s) URLs are downloaded to a temporary
// directory that lives until the source is closed.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source is a PDF ready for extraction.
type Source struct {
	// Path is the local file to read.
	Path string

	// Origin is the argument the source was resolved from.
	Origin string

	// Remote reports whether Path is a downloaded copy.
	Remote bool

	tmpDir string
}

// Close removes any downloaded copy. It is safe to call on local sources.
func (s *Source) Close() error {
	if s == nil || s.tmpDir == "" {
		return nil
	}
	err := os.RemoveAll(s.tmpDir)
	s.tmpDir = ""
	return err
}

// IsURL reports whether arg names an http or https resource.
func IsURL(arg string) bool {
	u, err := url.Parse(arg)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve returns the local source for arg. URLs are fetched once with
// client; a progress line is written to w.
func Resolve(ctx context.Context, client *http.Client, arg string, w io.Writer) (*Source, error) {
	if !IsURL(arg) {
		return &Source{Path: arg, Origin: arg}, nil
	}

	dir, err := os.MkdirTemp("", "pdf2wiki-*")
	if err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	src := &Source{
		Path:   filepath.Join(dir, FileName(arg)),
		Origin: arg,
		Remote: true,
		tmpDir: dir,
	}

	n, err := download(ctx, client, arg, src.Path)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("downloading %s: %w", arg, err)
	}
	fmt.Fprintf(w, "download:  %s (%d bytes)\n", filepath.Base(src.Path), n)
	return src, nil
}

// FileName derives a local file name from the last segment of a URL path,
// so the page title still reflects the document. It always ends in .pdf.
func FileName(rawURL string) string {
	name := "document"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
			name = base
		}
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// download fetches rawURL to destPath through a temporary file.
func download(ctx context.Context, client *http.Client, rawURL, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

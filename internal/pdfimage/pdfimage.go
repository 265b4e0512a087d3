// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfimage pulls embedded raster images out of a PDF and tags each
// with its page number and in-page position.
package pdfimage

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

// pdfMagic opens every PDF file; it must appear within the first kilobyte.
var pdfMagic = []byte("%PDF-")

// DocumentOpenError reports a path that is unreadable or not a PDF.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("opening PDF %s: %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error { return e.Err }

// rawImage is one image as delivered by the image source, before encoding.
type rawImage struct {
	Page int
	Ext  string
	Data io.Reader
}

// imageSource walks the images of a PDF page by page, in a stable order
// within each page.
type imageSource func(rs io.ReadSeeker, yield func(rawImage) error) error

// Extractor reads images from PDF files.
type Extractor struct {
	source imageSource
	log    *zap.Logger
}

// NewExtractor returns an Extractor backed by pdfcpu. A nil logger is
// replaced with a no-op logger.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{source: pdfcpuSource, log: log}
}

// Extract returns every raster image in the PDF at path, grouped by page and
// in the order each page lists them. A document without images yields an
// empty slice and no error.
func (e *Extractor) Extract(path string) ([]types.ImageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}
	defer f.Close()

	if err := checkMagic(f); err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}

	records := []types.ImageRecord{}
	perPage := make(map[int]int)

	err = e.source(f, func(img rawImage) error {
		data, err := io.ReadAll(img.Data)
		if err != nil {
			return fmt.Errorf("reading image %d on page %d: %w", perPage[img.Page], img.Page, err)
		}
		r := types.ImageRecord{
			Page:  img.Page,
			Index: perPage[img.Page],
			Data:  base64.StdEncoding.EncodeToString(data),
			Ext:   img.Ext,
		}
		perPage[img.Page]++
		records = append(records, r)
		e.log.Debug("extracted image",
			zap.Int("page", r.Page),
			zap.Int("index", r.Index),
			zap.String("ext", r.Ext),
			zap.Int("bytes", len(data)))
		return nil
	})
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}

	return records, nil
}

// checkMagic verifies the PDF header and rewinds f.
func checkMagic(f io.ReadSeeker) error {
	head := make([]byte, 1024)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Contains(head[:n], pdfMagic) {
		return fmt.Errorf("not a PDF document")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding: %w", err)
	}
	return nil
}

// pdfcpuSource enumerates images with pdfcpu. pdfcpu hands out a page's
// images from a map, so they are buffered and replayed ordered by page and
// then by object number. Page thumbnails are not content and are skipped.
func pdfcpuSource(rs io.ReadSeeker, yield func(rawImage) error) error {
	type pageImage struct {
		rawImage
		objNr int
	}
	var images []pageImage

	conf := model.NewDefaultConfiguration()
	err := api.ExtractImages(rs, nil, func(img model.Image, _ bool, _ int) error {
		if img.Reader == nil || img.Thumb {
			return nil
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("reading image object %d on page %d: %w", img.ObjNr, img.PageNr, err)
		}
		images = append(images, pageImage{
			rawImage: rawImage{Page: img.PageNr, Ext: img.FileType, Data: bytes.NewReader(data)},
			objNr:    img.ObjNr,
		})
		return nil
	}, conf)
	if err != nil {
		return err
	}

	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Page != images[j].Page {
			return images[i].Page < images[j].Page
		}
		return images[i].objNr < images[j].objNr
	})
	for _, img := range images {
		if err := yield(img.rawImage); err != nil {
			return err
		}
	}
	return nil
}

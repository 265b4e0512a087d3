// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"mime"
	"strings"
)

// MIMETypePDF is the MIME type sent with document bytes to the converter.
const MIMETypePDF = "application/pdf"

// ImageRecord is one raster image extracted from a PDF, tagged with its
// position in the source document. Records are created during extraction
// and never mutated.
type ImageRecord struct {
	// Page is the 1-based page number the image appears on.
	Page int `json:"page" yaml:"page"`

	// Index is the zero-based position of the image within its page, in the
	// order the document lists it.
	Index int `json:"index" yaml:"index"`

	// Data is the base64 (standard encoding) image payload.
	Data string `json:"-" yaml:"-"`

	// Ext is the image file extension without the dot (e.g. "png", "jpg").
	Ext string `json:"ext" yaml:"ext"`
}

// imageMIMETypes covers the formats pdfcpu writes for extracted images.
var imageMIMETypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"jpx":  "image/jpx",
	"jp2":  "image/jp2",
	"webp": "image/webp",
}

// MIMEType returns the MIME type for the record's extension, falling back to
// application/octet-stream for unknown formats.
func (r ImageRecord) MIMEType() string {
	ext := strings.ToLower(strings.TrimPrefix(r.Ext, "."))
	if t, ok := imageMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ConversionStatus indicates how far a run got.
type ConversionStatus string

const (
	StatusNone      ConversionStatus = "none"
	StatusConverted ConversionStatus = "converted"
	StatusPublished ConversionStatus = "published"
	StatusFailed    ConversionStatus = "failed"
)

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfimage

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// DocumentInfo summarizes a PDF without decoding its content streams.
type DocumentInfo struct {
	Path  string
	Pages int
}

// Inspect opens the PDF at path and reports its page count.
func Inspect(path string) (info DocumentInfo, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = &DocumentOpenError{Path: path, Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return DocumentInfo{}, &DocumentOpenError{Path: path, Err: err}
	}
	defer f.Close()

	return DocumentInfo{Path: path, Pages: r.NumPage()}, nil
}

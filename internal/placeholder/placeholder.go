// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package placeholder correlates extracted images with positions in
// AI-generated Markdown. Each image gets a token such as [IMAGE_1_0]; the
// converter is asked to place tokens where the images belong, and Resolve
// swaps every known token for an inline data-URI image.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/pdf2wiki/pkg/types"
)

// tokenPattern matches anything shaped like a placeholder token, known or not.
var tokenPattern = regexp.MustCompile(`\[IMAGE_\d+_\d+\]`)

// Token returns the placeholder for the image at (page, index). The mapping
// is deterministic and injective.
func Token(page, index int) string {
	return fmt.Sprintf("[IMAGE_%d_%d]", page, index)
}

// TokenFor returns the placeholder for r.
func TokenFor(r types.ImageRecord) string {
	return Token(r.Page, r.Index)
}

// Tokens returns one token per record, ordered by page and then by in-page
// index. The order is advisory; the converter decides final placement.
func Tokens(records []types.ImageRecord) []string {
	sorted := make([]types.ImageRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].Index < sorted[j].Index
	})

	tokens := make([]string, len(sorted))
	for i, r := range sorted {
		tokens[i] = TokenFor(r)
	}
	return tokens
}

// Index keys records by their token.
func Index(records []types.ImageRecord) map[string]types.ImageRecord {
	m := make(map[string]types.ImageRecord, len(records))
	for _, r := range records {
		m[TokenFor(r)] = r
	}
	return m
}

// ImageRef returns the inline Markdown image for r. The result never
// contains a placeholder token, which keeps Resolve idempotent.
func ImageRef(r types.ImageRecord) string {
	return fmt.Sprintf("![image page %d #%d](data:%s;base64,%s)", r.Page, r.Index, r.MIMEType(), r.Data)
}

// Resolve replaces every occurrence of every known token in markdown with
// its inline image. Known tokens the text never mentions contribute
// nothing; unknown token-shaped text is left as is.
func Resolve(markdown string, images map[string]types.ImageRecord) string {
	if len(images) == 0 {
		return markdown
	}

	// Sorted so the replacer is built the same way on every run.
	keys := make([]string, 0, len(images))
	for tok := range images {
		keys = append(keys, tok)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, tok := range keys {
		pairs = append(pairs, tok, ImageRef(images[tok]))
	}
	return strings.NewReplacer(pairs...).Replace(markdown)
}

// Unresolved returns the token-shaped strings left in markdown, in order of
// appearance and without duplicates.
func Unresolved(markdown string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllString(markdown, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Missing returns the known tokens that do not appear in markdown, sorted.
// These images are dropped from the final document.
func Missing(markdown string, images map[string]types.ImageRecord) []string {
	var out []string
	for tok := range images {
		if !strings.Contains(markdown, tok) {
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

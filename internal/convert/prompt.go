// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"text/template"
)

// conversionPromptTmpl is the instruction sent alongside the PDF. It asks for
// structure-preserving Markdown and, when the document has images, for each
// placeholder to be written verbatim where its image sits.
var conversionPromptTmpl = template.Must(template.New("conversion").Parse(`Convert the attached PDF document into well-structured Markdown.

Preserve the document's structure:
- headings as Markdown headings (#, ##, ###) following the original hierarchy
- bulleted and numbered lists as Markdown lists
- tables as Markdown tables
- quotations as block quotes (>)
- emphasis and inline code where the original uses it
{{if .Tokens}}
The document contains images. Each image has a placeholder named [IMAGE_<page>_<n>], where <page> is the page number and <n> counts images on that page from zero in document order. Insert every placeholder below, exactly as written and on its own line, at the position where the corresponding image appears in the original document:
{{range .Tokens}}{{.}}
{{end}}
Do not describe the images and do not invent placeholders that are not listed.
{{end}}
Respond with the Markdown only. Do not wrap it in a code block and do not add commentary.
`))

// renderPrompt executes the conversion prompt template with the given tokens.
func renderPrompt(tokens []string) (string, error) {
	var buf bytes.Buffer
	if err := conversionPromptTmpl.Execute(&buf, struct{ Tokens []string }{Tokens: tokens}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Prompt returns the instruction text a converter sends for a document with
// the given placeholder tokens.
func Prompt(tokens []string) (string, error) {
	return renderPrompt(tokens)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

const (
	// EditorMarkdown is the Wiki.js editor key for Markdown pages.
	EditorMarkdown = "markdown"

	// DefaultLocale is the page locale used when none is configured.
	DefaultLocale = "en"
)

// PublishRequest carries everything the wiki needs to create one page. It
// is built once per run and sent once.
type PublishRequest struct {
	Title       string   `json:"title" yaml:"title"`
	Path        string   `json:"path" yaml:"path"`
	Content     string   `json:"content" yaml:"-"`
	Description string   `json:"description" yaml:"description"`
	Editor      string   `json:"editor" yaml:"editor"`
	Locale      string   `json:"locale" yaml:"locale"`
	IsPublished bool     `json:"isPublished" yaml:"is_published"`
	IsPrivate   bool     `json:"isPrivate" yaml:"is_private"`
	Tags        []string `json:"tags" yaml:"tags"`
}

package types

import "time"

// HTTPConfig holds shared HTTP settings used by collaborators that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AIProvider identifies the document-understanding backend.
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderClaude AIProvider = "claude"
)

// AIConfig holds settings for the Generative AI document converter.
type AIConfig struct {
	// Provider selects the backend: gemini or claude.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the response length for backends that require it.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// WikiConfig holds settings for the Wiki.js publisher.
type WikiConfig struct {
	// URL is the wiki base URL (e.g. "https://wiki.example.com").
	URL string `json:"url" yaml:"url"`

	// Token is the API bearer token.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Path is the default parent path for created pages (e.g. "imports").
	Path string `json:"path" yaml:"path"`

	// Locale is the page locale (default "en").
	Locale string `json:"locale" yaml:"locale"`

	// Description is the page description; empty derives one from the file name.
	Description string `json:"description" yaml:"description"`

	// Tags are attached to every created page.
	Tags []string `json:"tags" yaml:"tags"`

	// Published controls the isPublished flag.
	Published bool `json:"published" yaml:"published"`

	// Private controls the isPrivate flag.
	Private bool `json:"private" yaml:"private"`
}

// Config is the fully resolved configuration for one run. It is built once
// at startup and handed to each collaborator explicitly.
type Config struct {
	AI   AIConfig   `json:"ai" yaml:"ai"`
	Wiki WikiConfig `json:"wiki" yaml:"wiki"`
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// LogLevel is the zap level for diagnostics (debug, info, warn, error).
	LogLevel string `json:"log_level" yaml:"log_level"`

	// OpenBrowser controls whether a published page is opened afterwards.
	OpenBrowser bool `json:"open_browser" yaml:"open_browser"`
}

// Redacted returns a copy of c with secrets masked, suitable for printing.
func (c Config) Redacted() Config {
	out := c
	out.AI.APIKey = mask(c.AI.APIKey)
	out.Wiki.Token = mask(c.Wiki.Token)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

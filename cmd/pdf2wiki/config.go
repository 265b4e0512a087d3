// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2wiki/internal/convert"
	"github.com/pdiddy/pdf2wiki/internal/secrets"
	"github.com/pdiddy/pdf2wiki/pkg/types"
)

const defaultTimeout = 2 * time.Minute

// providerSecrets maps each AI provider to its .secrets/ file and the
// environment variable its own SDKs read.
var providerSecrets = map[types.AIProvider]struct{ file, env string }{
	types.ProviderGemini: {secrets.GeminiAPIKey, "GEMINI_API_KEY"},
	types.ProviderClaude: {secrets.AnthropicAPIKey, "ANTHROPIC_API_KEY"},
}

func setDefaults() {
	viper.SetDefault("ai.provider", string(types.ProviderGemini))
	viper.SetDefault("ai.max_tokens", 0)
	viper.SetDefault("wiki.locale", types.DefaultLocale)
	viper.SetDefault("wiki.published", true)
	viper.SetDefault("wiki.private", false)
	viper.SetDefault("wiki.tags", []string{})
	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("open_browser", true)
	viper.SetDefault("log.level", "warn")
}

// mustBind binds a flag to a viper key; flags are declared in init so a
// failure is a programming error.
func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

// resolveConfig builds the run configuration from viper (flags, env, config
// file, defaults) and the secrets directory. Collaborators receive the result
// explicitly and never read viper themselves.
func resolveConfig() types.Config {
	provider := types.AIProvider(viper.GetString("ai.provider"))

	apiKey := viper.GetString("ai.api_key")
	if ps, ok := providerSecrets[provider]; ok {
		apiKey = secrets.Pick(loadedSecrets, ps.file, apiKey)
		if apiKey == "" {
			apiKey = os.Getenv(ps.env)
		}
	}

	model := viper.GetString("ai.model")
	if model == "" {
		model = convert.DefaultModel(provider)
	}

	timeout := viper.GetDuration("http.timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return types.Config{
		AI: types.AIConfig{
			Provider:  provider,
			Model:     model,
			APIKey:    apiKey,
			MaxTokens: viper.GetInt("ai.max_tokens"),
		},
		Wiki: types.WikiConfig{
			URL:         viper.GetString("wiki.url"),
			Token:       secrets.Pick(loadedSecrets, secrets.WikiAPIToken, viper.GetString("wiki.token")),
			Path:        viper.GetString("wiki.path"),
			Locale:      viper.GetString("wiki.locale"),
			Description: viper.GetString("wiki.description"),
			Tags:        viper.GetStringSlice("wiki.tags"),
			Published:   viper.GetBool("wiki.published"),
			Private:     viper.GetBool("wiki.private"),
		},
		HTTP:        types.HTTPConfig{Timeout: timeout},
		LogLevel:    viper.GetString("log.level"),
		OpenBrowser: viper.GetBool("open_browser"),
	}
}

func newHTTPClient(cfg types.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(resolveConfig().Redacted())
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

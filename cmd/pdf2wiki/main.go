// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2wiki CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pdf2wiki/internal/logging"
	"github.com/pdiddy/pdf2wiki/internal/pipeline"
	"github.com/pdiddy/pdf2wiki/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the diagnostics logger, built once the config is read.
var logger = zap.NewNop()

// rootCmd is the base command for the pdf2wiki CLI.
var rootCmd = &cobra.Command{
	Use:   "pdf2wiki",
	Short: "Convert PDF documents to Markdown and publish them to Wiki.js",
	Long: `pdf2wiki converts a PDF into Markdown with a Generative AI
document-understanding API, embeds the PDF's images inline at their
original positions, and publishes the result as a Wiki.js page.

Use publish for the full run, convert to stop after the Markdown, and
inspect to list a document's images without calling any API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		l, err := logging.New(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf2wiki.yaml or ~/.config/pdf2wiki/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "AI backend: gemini or claude")
	rootCmd.PersistentFlags().String("model", "", "AI model identifier (default depends on provider)")
	rootCmd.PersistentFlags().String("log-level", "", "diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 2m)")

	mustBind("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
	mustBind("ai.model", rootCmd.PersistentFlags().Lookup("model"))
	mustBind("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBind("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf2wiki")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf2wiki"))
		}
	}

	viper.SetEnvPrefix("PDF2WIKI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err unless the pipeline already wrote its details.
func reportError(w io.Writer, err error) {
	if errors.Is(err, pipeline.ErrReported) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2wiki/internal/acquire"
	"github.com/pdiddy/pdf2wiki/internal/convert"
	"github.com/pdiddy/pdf2wiki/internal/pdfimage"
	"github.com/pdiddy/pdf2wiki/internal/pipeline"
	"github.com/pdiddy/pdf2wiki/internal/wiki"
	"github.com/pdiddy/pdf2wiki/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file.pdf|url>",
	Short: "Convert a PDF and publish it as a Wiki.js page",
	Long: `Publish converts the PDF to Markdown, embeds its images at their
original positions, prints the result, creates a page on the configured
Wiki.js instance and opens it in the browser.

The argument may be a local path or an http(s) URL, which is downloaded
to a temporary file first. The page title is the file name without
extension. The page path is the configured parent path joined with a
slug of the title.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveConfig()
		if unpublished, _ := cmd.Flags().GetBool("unpublished"); unpublished {
			cfg.Wiki.Published = false
		}
		if noBrowser, _ := cmd.Flags().GetBool("no-browser"); noBrowser {
			cfg.OpenBrowser = false
		}

		p, err := newPipeline(cmd, cfg, os.Stderr, os.Stdout)
		if err != nil {
			return err
		}
		p.Publisher = wiki.NewClient(cfg.Wiki, newHTTPClient(cfg), logger)
		p.Open = openBrowser

		src, err := acquire.Resolve(cmd.Context(), newHTTPClient(cfg), args[0], os.Stderr)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = p.Publish(cmd.Context(), src.Path)
		return err
	},
}

// newPipeline builds a pipeline with the extractor and converter for cfg.
// The publisher and opener are left for the caller.
func newPipeline(cmd *cobra.Command, cfg types.Config, status, output io.Writer) (*pipeline.Pipeline, error) {
	conv, err := convert.New(cmd.Context(), cfg.AI, newHTTPClient(cfg), logger)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Extractor: pdfimage.NewExtractor(logger),
		Converter: conv,
		Inspect:   pdfimage.Inspect,
		Config:    cfg,
		Status:    status,
		Output:    output,
		Log:       logger,
	}, nil
}

func openBrowser(url string) error {
	browser.Stdout = os.Stderr
	return browser.OpenURL(url)
}

func init() {
	publishCmd.Flags().String("wiki-url", "", "Wiki.js base URL (e.g. https://wiki.example.com)")
	publishCmd.Flags().String("wiki-path", "", "parent path for the created page")
	publishCmd.Flags().String("locale", "", "page locale (default en)")
	publishCmd.Flags().String("description", "", "page description (default derived from the file name)")
	publishCmd.Flags().StringSlice("tag", nil, "tag to attach to the page (repeatable)")
	publishCmd.Flags().Bool("private", false, "create the page as private")
	publishCmd.Flags().Bool("unpublished", false, "create the page without publishing it")
	publishCmd.Flags().Bool("no-browser", false, "do not open the page after publishing")

	mustBind("wiki.url", publishCmd.Flags().Lookup("wiki-url"))
	mustBind("wiki.path", publishCmd.Flags().Lookup("wiki-path"))
	mustBind("wiki.locale", publishCmd.Flags().Lookup("locale"))
	mustBind("wiki.description", publishCmd.Flags().Lookup("description"))
	mustBind("wiki.tags", publishCmd.Flags().Lookup("tag"))
	mustBind("wiki.private", publishCmd.Flags().Lookup("private"))

	rootCmd.AddCommand(publishCmd)
}

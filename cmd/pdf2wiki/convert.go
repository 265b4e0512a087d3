package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2wiki/internal/acquire"
	"github.com/pdiddy/pdf2wiki/internal/convert"
	"github.com/pdiddy/pdf2wiki/internal/preview"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.pdf|url>",
	Short: "Convert a PDF to Markdown with its images embedded",
	Long: `Convert runs the same extraction, AI conversion and image placement
as publish, then stops. The Markdown goes to stdout, or to --output with
a YAML frontmatter block describing the conversion. --html additionally
renders a standalone HTML preview.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveConfig()
		outPath, _ := cmd.Flags().GetString("output")
		htmlPath, _ := cmd.Flags().GetString("html")

		p, err := newPipeline(cmd, cfg, os.Stderr, nil)
		if err != nil {
			return err
		}

		src, err := acquire.Resolve(cmd.Context(), newHTTPClient(cfg), args[0], os.Stderr)
		if err != nil {
			return err
		}
		defer src.Close()

		conv, err := p.Convert(cmd.Context(), src.Path)
		if err != nil {
			return err
		}

		if outPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), conv.Markdown)
		} else {
			doc, err := convert.WithFrontmatter(convert.Frontmatter{
				SourcePDF:   filepath.Base(src.Path),
				ConvertedAt: time.Now().UTC().Truncate(time.Second),
				Provider:    string(cfg.AI.Provider),
				Model:       cfg.AI.Model,
				Images:      len(conv.Images),
			}, conv.Markdown)
			if err != nil {
				return err
			}
			if err := writeFile(outPath, []byte(doc)); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote:     %s\n", outPath)
		}

		if htmlPath != "" {
			base := filepath.Base(src.Path)
			page, err := preview.Page(strings.TrimSuffix(base, filepath.Ext(base)), conv.Markdown)
			if err != nil {
				return err
			}
			if err := writeFile(htmlPath, page); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote:     %s\n", htmlPath)
		}
		return nil
	},
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "write Markdown with frontmatter to this file instead of stdout")
	convertCmd.Flags().String("html", "", "also write an HTML preview to this file")

	rootCmd.AddCommand(convertCmd)
}

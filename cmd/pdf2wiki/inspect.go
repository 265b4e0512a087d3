package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2wiki/internal/acquire"
	"github.com/pdiddy/pdf2wiki/internal/convert"
	"github.com/pdiddy/pdf2wiki/internal/pdfimage"
	"github.com/pdiddy/pdf2wiki/internal/placeholder"
	"github.com/pdiddy/pdf2wiki/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf|url>",
	Short: "List a PDF's images and placeholders without calling any API",
	Long: `Inspect reports the page count and every embedded image with the
placeholder token it will be given. With --prompt it also prints the
instruction that would be sent to the AI backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showPrompt, _ := cmd.Flags().GetBool("prompt")

		src, err := acquire.Resolve(cmd.Context(), newHTTPClient(resolveConfig()), args[0], os.Stderr)
		if err != nil {
			return err
		}
		defer src.Close()
		path := src.Path

		images, err := pdfimage.NewExtractor(logger).Extract(path)
		if err != nil {
			return err
		}

		info, err := pdfimage.Inspect(path)
		if err != nil {
			logger.Sugar().Warnw("could not read page count", "path", path, "error", err)
		}

		return writeInspection(cmd.OutOrStdout(), info, path, images, showPrompt)
	},
}

func writeInspection(w io.Writer, info pdfimage.DocumentInfo, path string, images []types.ImageRecord, showPrompt bool) error {
	fmt.Fprintf(w, "file:   %s\n", path)
	if info.Pages > 0 {
		fmt.Fprintf(w, "pages:  %d\n", info.Pages)
	}
	fmt.Fprintf(w, "images: %d\n", len(images))

	index := placeholder.Index(images)
	tokens := placeholder.Tokens(images)
	for _, tok := range tokens {
		rec := index[tok]
		fmt.Fprintf(w, "  %-16s page %d  %-10s %d bytes (base64)\n", tok, rec.Page, rec.MIMEType(), len(rec.Data))
	}

	if !showPrompt {
		return nil
	}
	prompt, err := convert.Prompt(tokens)
	if err != nil {
		return fmt.Errorf("rendering prompt: %w", err)
	}
	fmt.Fprintf(w, "\n%s", prompt)
	return nil
}

func init() {
	inspectCmd.Flags().Bool("prompt", false, "print the conversion instruction as well")

	rootCmd.AddCommand(inspectCmd)
}

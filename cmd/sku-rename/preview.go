package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sku-renamer/internal/thumbnail"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	var output string
	var width int

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Write the preview extracted from a photo",
		Long: `Extracts the preview the web service would show for FILE. For ARW files this
is the largest embedded JPEG that decodes, or the placeholder when none does.`,
		Example: `  sku-rename preview IMG_0001.ARW -o front.jpg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			ex := thumbnail.NewExtractor(thumbnail.Options{Width: width})
			p, err := ex.Preview(cmd.Context(), filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if output == "" {
				output = previewName(path, p.ContentType)
			}
			if err := os.WriteFile(output, p.Data, 0o644); err != nil {
				return err
			}

			note := ""
			if p.Placeholder {
				note = " (placeholder)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d %s from %s%s\n",
				output, p.Width, p.Height, humanize.IBytes(uint64(len(p.Data))), p.Source, note)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default FILE_preview.jpg)")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Preview width in pixels")

	return cmd
}

// previewName derives the default output name for a preview of path.
func previewName(path, contentType string) string {
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + "_preview" + ext
}

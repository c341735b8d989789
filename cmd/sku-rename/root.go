package main

import (
	"sku-renamer/internal/logging"
	"sku-renamer/internal/startup"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "sku-rename",
		Short: "Rename product photos to SKU-based filenames",
		Long: `sku-rename packs a set of product photos into a zip archive whose
entries are named {SKU}{descriptor}.{ext}, the same way the web service does.

JPG, PNG and Sony ARW files are accepted. RAW files are packed unchanged; only
their embedded preview is decoded for checking.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			startup.LoadDotEnv()
			if verbose {
				logging.SetLevel(logging.LevelDebug)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newPackCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newDescriptorsCmd())

	return cmd
}

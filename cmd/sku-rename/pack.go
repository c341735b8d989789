package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sku-renamer/internal/archive"
	"sku-renamer/internal/batch"
	"sku-renamer/internal/descriptor"
	"sku-renamer/internal/intake"
	"sku-renamer/internal/logging"
	"sku-renamer/internal/publish"
	"sku-renamer/internal/rename"
	"sku-renamer/internal/startup"
	"sku-renamer/internal/thumbnail"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// errInvalidBatch is returned after the validation errors have been printed.
var errInvalidBatch = errors.New("batch is not ready for export")

type packOptions struct {
	sku      string
	manifest string
	outDir   string
	level    int
	workers  int
	dryRun   bool
	publish  bool
}

func newPackCmd() *cobra.Command {
	var opts packOptions

	cmd := &cobra.Command{
		Use:   "pack [descriptor=path ...]",
		Short: "Rename photos and write the SKU archive",
		Long: `Runs the photos through the same intake checks as the web service, assigns
their descriptors, validates the batch and writes {SKU}_images.zip.

Photos are given either as descriptor=path arguments or in a YAML shot list.
Every validation error is printed before the command fails.`,
		Example: `  # Pack two photos
  sku-rename pack --sku 63755 front=IMG_0001.ARW rear=IMG_0002.jpg

  # Pack from a shot list into ./out and upload to the configured bucket
  sku-rename pack --manifest shots.yaml --out out --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !archive.ValidLevel(opts.level) {
				return fmt.Errorf("invalid argument %d for \"--level\" flag: must be between 1 and 9", opts.level)
			}

			shots, err := parseShotArgs(args)
			if err != nil {
				return err
			}
			if opts.manifest != "" {
				list, err := loadShotList(opts.manifest)
				if err != nil {
					return err
				}
				if opts.sku == "" {
					opts.sku = list.SKU
				}
				shots = append(list.Images, shots...)
			}
			if len(shots) == 0 {
				return errors.New("no images given")
			}

			var pub *publish.Publisher
			if opts.publish && !opts.dryRun {
				pub, err = publish.New(startup.PublishConfig())
				if err != nil {
					return err
				}
			}

			return runPack(cmd.Context(), opts, shots, pub, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.sku, "sku", "s", "", "Product SKU (overrides the shot list)")
	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "YAML shot list")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Directory the archive is written to")
	cmd.Flags().IntVar(&opts.level, "level", archive.DefaultLevel, "Deflate level (1-9)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Preview workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate and print the planned names without writing")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Upload the archive to the S3_* configured bucket")

	return cmd
}

// runPack builds the batch from shots and writes or publishes its archive.
// pub may be nil.
func runPack(ctx context.Context, opts packOptions, shots []shot, pub *publish.Publisher, out, errOut io.Writer) error {
	uploads := make([]intake.Upload, 0, len(shots))
	for _, s := range shots {
		u, err := intake.FromFile(s.File)
		if err != nil {
			return err
		}
		uploads = append(uploads, u)
	}

	pipeline := intake.New(thumbnail.NewExtractor(thumbnail.Options{}), intake.Options{Workers: opts.workers})
	result, err := pipeline.Process(ctx, uploads, 0)
	if errors.Is(err, intake.ErrTooManyFiles) {
		return fmt.Errorf("maximum %d images allowed, got %d", batch.MaxImages, len(shots))
	}
	if err != nil {
		return err
	}
	if len(result.Rejections) > 0 {
		for _, r := range result.Rejections {
			fmt.Fprintf(errOut, "  rejected %s\n", r)
		}
		return fmt.Errorf("%d of %d files rejected", len(result.Rejections), len(shots))
	}

	store := batch.NewStore()
	store.SetSKU(opts.sku)
	if err := store.Add(result.Records...); err != nil {
		return err
	}

	// Records come back in input order once nothing was rejected.
	for i, rec := range result.Records {
		d, err := descriptor.Parse(shots[i].Descriptor)
		if err != nil {
			return fmt.Errorf("%s: %w", shots[i].File, err)
		}
		if err := store.UpdateDescriptor(rec.ID, d); err != nil {
			return err
		}
	}

	sku, images := store.Snapshot()
	if res := rename.ValidateBatch(images, sku); !res.Valid {
		for _, msg := range res.Errors {
			fmt.Fprintf(errOut, "  %s\n", msg)
		}
		return errInvalidBatch
	}

	if opts.dryRun {
		for _, img := range images {
			fmt.Fprintf(out, "%s -> %s\n", img.OriginalName, rename.Filename(sku, *img.Descriptor, img.Extension))
		}
		return nil
	}

	var buf bytes.Buffer
	manifest, err := archive.NewBuilder(opts.level).Build(&buf, images, sku)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(opts.outDir, manifest.Name)
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	logging.Debug("Wrote %s", target)

	names := make([]string, 0, len(manifest.Entries))
	for _, e := range manifest.Entries {
		names = append(names, e.Name)
	}
	fmt.Fprintf(out, "%s (%s): %s\n", target, humanize.IBytes(uint64(manifest.Bytes)), strings.Join(names, ", "))

	if pub != nil {
		loc, err := pub.Publish(ctx, manifest.Name, buf.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "published s3://%s/%s\n", loc.Bucket, loc.Key)
	}
	return nil
}

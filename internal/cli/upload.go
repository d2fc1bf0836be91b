package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"portalimg/internal/core/domain"
	"portalimg/internal/output"
	"portalimg/internal/source"
	"portalimg/internal/upload"
)

var uploadFlags struct {
	category string
	workers  int
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file|dir>...",
	Short: "Validate, compress and store images in S3",
	Long: `Upload runs every file through validation and compression, then stores the
result together with a JSON metadata sidecar. A failing file does not stop the
rest of the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVarP(&uploadFlags.category, "category", "c", "", "portal category (default from config)")
	uploadCmd.Flags().IntVarP(&uploadFlags.workers, "workers", "w", 0, "concurrent uploads (default: config or CPU threads)")
}

func resolveCategory(flag string) (domain.Category, error) {
	category := domain.Category(flag)
	if flag == "" {
		category = domain.Category(cfg.Upload.Category)
	}
	if !category.IsValid() {
		return "", fmt.Errorf("unknown category %q, expected one of %v", category, domain.Categories)
	}
	return category, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	category, err := resolveCategory(uploadFlags.category)
	if err != nil {
		return err
	}

	files, err := source.Collect(args, cfg.Upload.MaxInputBytes())
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	if identity, err := be.identity(ctx); err != nil {
		printer.Warning("could not resolve AWS identity: %v", err)
	} else {
		printer.Info("uploading as %s", identity)
	}
	if err := be.verify(ctx); err != nil {
		return fmt.Errorf("%w (run 'portalimg setup' first)", err)
	}

	dev := newDevice()
	workers := uploadFlags.workers
	if workers <= 0 {
		workers = cfg.Upload.Workers
	}
	if workers <= 0 {
		workers = dev.WorkerCount()
	}
	logger.Debug("starting upload", "files", len(files), "category", category, "workers", workers)

	svc := upload.NewService(newCompressor(), be.store, dev, logger, uploadOptions(cfg, workers))
	batch, err := svc.UploadAll(ctx, files, category)
	if err != nil {
		return err
	}

	if len(batch.Uploaded) > 0 {
		table := output.NewTable(cmd.OutOrStdout(), "id", "file", "category", "original", "stored")
		for _, r := range batch.Uploaded {
			table.AddRow(r.Metadata.ID, r.Metadata.FileName, string(r.Metadata.Category), r.OriginalSize, r.CompressedSize)
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	for _, f := range batch.Failed {
		printer.Error("%s: %v", f.Name, f.Err)
	}

	if len(batch.Failed) > 0 {
		return fmt.Errorf("%d of %d uploads failed", len(batch.Failed), len(files))
	}
	printer.Success("uploaded %d images to %s", len(batch.Uploaded), cfg.Storage.Bucket)
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"portalimg/internal/pkg/sizefmt"
)

var downloadCmd = &cobra.Command{
	Use:   "download <image-id> <output-dir>",
	Short: "Fetch a stored image and its metadata sidecar",
	Args:  cobra.ExactArgs(2),
	RunE:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, outputDir := args[0], args[1]

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	printer.Info("downloading image %s...", id)
	data, meta, err := be.store.GetImage(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get image %s: %w", id, err)
	}

	imagePath := filepath.Join(outputDir, filepath.Base(meta.FileName))
	if err := os.WriteFile(imagePath, data, 0644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	metaPath := filepath.Join(outputDir, meta.ID+".json")
	if err := os.WriteFile(metaPath, sidecar, 0644); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	printer.Success("saved %s (%s)", imagePath, sizefmt.FormatFileSize(int64(len(data))))
	printer.Success("saved %s", metaPath)
	return nil
}

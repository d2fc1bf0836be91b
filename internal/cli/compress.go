package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"portalimg/internal/config"
	"portalimg/internal/core/domain"
	"portalimg/internal/output"
	"portalimg/internal/pkg/sizefmt"
	"portalimg/internal/source"
	"portalimg/internal/upload"
)

var compressFlags struct {
	out       string
	maxSizeMB float64
	maxSide   int
	quality   float64
	fileType  string
}

var compressCmd = &cobra.Command{
	Use:   "compress <file|dir>...",
	Short: "Shrink images locally to the configured size budget",
	Long: `Compress images without uploading them. Files already within the size
budget are copied unchanged. Directories are expanded one level deep.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompress,
}

func init() {
	rootCmd.AddCommand(compressCmd)

	f := compressCmd.Flags()
	f.StringVarP(&compressFlags.out, "out", "o", "compressed", "output directory")
	f.Float64Var(&compressFlags.maxSizeMB, "max-size-mb", 0, "size budget in MiB (default from config)")
	f.IntVar(&compressFlags.maxSide, "max-side", 0, "longest side in pixels (default from config)")
	f.Float64Var(&compressFlags.quality, "quality", 0, "starting quality in (0,1] (default from config)")
	f.StringVar(&compressFlags.fileType, "type", "", "output MIME type (default from config)")
}

// compressionOverrides applies explicitly set flags on top of the config and
// checks the result with the same rules as the config file.
func compressionOverrides(cmd *cobra.Command, c *config.Config) (domain.CompressionOptions, error) {
	opts := c.Compression
	flags := cmd.Flags()
	if flags.Changed("max-size-mb") {
		opts.MaxSizeMB = compressFlags.maxSizeMB
	}
	if flags.Changed("max-side") {
		opts.MaxWidthOrHeight = compressFlags.maxSide
	}
	if flags.Changed("quality") {
		opts.Quality = compressFlags.quality
	}
	if flags.Changed("type") {
		opts.FileType = compressFlags.fileType
	}
	if err := config.ValidateCompression(opts); err != nil {
		return opts, fmt.Errorf("invalid compression flags: %w", err)
	}
	return opts, nil
}

func runCompress(cmd *cobra.Command, args []string) error {
	compression, err := compressionOverrides(cmd, cfg)
	if err != nil {
		return err
	}

	files, err := source.Collect(args, cfg.Upload.MaxInputBytes())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(compressFlags.out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	opts := upload.Options{Compression: compression}
	svc := upload.NewService(newCompressor(), nil, nil, logger, opts)

	table := output.NewTable(cmd.OutOrStdout(), "file", "output", "original", "compressed", "quality", "size")
	failed := 0
	taken := make(map[string]bool)
	for _, f := range files {
		res, err := svc.Compress(f)
		if err != nil {
			failed++
			printer.Error("%s: %v", f.Name(), err)
			continue
		}

		dest := uniqueDest(taken, filepath.Join(compressFlags.out, res.File.Name()))
		if err := writeFile(dest, res.File); err != nil {
			failed++
			printer.Error("%s: %v", f.Name(), err)
			continue
		}

		quality, dims := "-", "-"
		if res.WasCompressed {
			quality = strconv.FormatFloat(res.Quality, 'f', -1, 64)
			dims = fmt.Sprintf("%dx%d", res.Width, res.Height)
		}
		table.AddRow(f.Name(), dest,
			sizefmt.FormatFileSize(res.OriginalSize),
			sizefmt.FormatFileSize(res.CompressedSize),
			quality, dims)
	}

	if table.Len() > 0 {
		if err := table.Render(); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to compress", failed, len(files))
	}
	printer.Success("compressed %d files into %s", len(files), compressFlags.out)
	return nil
}

// uniqueDest suffixes dest with -2, -3, ... when an earlier file in the same
// run already wrote there. burger.png and burger.jpg both become burger.webp.
func uniqueDest(taken map[string]bool, dest string) string {
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	candidate := dest
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
	taken[candidate] = true
	return candidate
}

func writeFile(dest string, file domain.File) error {
	if df, ok := file.(*source.DiskFile); ok && samePath(df.Path(), dest) {
		return nil
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file.Name(), err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return out.Close()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"portalimg/internal/output"
	"portalimg/internal/pkg/sizefmt"
	"portalimg/internal/source"
	"portalimg/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check files against the portal upload rules",
	Long: `Check that each file is a supported image type (JPEG, PNG, WebP, GIF, AVIF)
and that its name contains no CJK ideographs. Types are detected from content.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := source.Collect(args, cfg.Upload.MaxInputBytes())
	if err != nil {
		return err
	}

	table := output.NewTable(cmd.OutOrStdout(), "file", "type", "size", "result", "reason")
	invalid := 0
	for _, f := range files {
		verdict := validation.Validate(f)
		if !verdict.Valid {
			invalid++
		}
		table.AddRow(f.Name(), f.Type(), sizefmt.FormatFileSize(f.Size()), printer.Verdict(verdict.Valid), verdict.Error)
	}
	if err := table.Render(); err != nil {
		return err
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d files failed validation", invalid, len(files))
	}
	return nil
}

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"portalimg/internal/core/domain"
	"portalimg/internal/output"
	"portalimg/internal/pkg/sizefmt"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored images, newest first",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only list this category")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var category domain.Category
	if listCategory != "" {
		c, err := resolveCategory(listCategory)
		if err != nil {
			return err
		}
		category = c
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	images, err := be.store.ListImages(ctx, category)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		printer.Info("no images stored")
		return nil
	}

	table := output.NewTable(cmd.OutOrStdout(), "id", "category", "file", "size", "uploaded")
	for _, img := range images {
		table.AddRow(img.ID, string(img.Category), img.FileName,
			sizefmt.FormatFileSize(img.Size), img.CreatedAt.Local().Format(time.DateTime))
	}
	return table.Render()
}

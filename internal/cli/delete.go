package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <image-id>...",
	Aliases: []string{"rm"},
	Short:   "Remove stored images and their metadata",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	failed := 0
	for _, id := range args {
		if err := be.store.DeleteImage(ctx, id); err != nil {
			failed++
			printer.Error("%s: %v", id, err)
			continue
		}
		printer.Success("deleted %s", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deletions failed", failed, len(args))
	}
	return nil
}

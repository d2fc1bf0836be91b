package cli

import (
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the bucket and its folder layout",
	Long: `Setup creates the configured bucket when it does not exist yet and adds a
folder marker for every portal category and for the metadata sidecars. It is
safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	if err := be.store.EnsureBucket(ctx); err != nil {
		return err
	}

	printer.Success("bucket %s is ready", cfg.Storage.Bucket)
	printer.Header("Bucket configuration")
	printer.Info("name:   %s", cfg.Storage.Bucket)
	printer.Info("region: %s", cfg.Storage.Region)
	printer.Header("Folder structure")
	for _, folder := range be.folders() {
		printer.Info("%s", folder)
	}
	return nil
}

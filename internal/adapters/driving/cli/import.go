package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [snapshot.json]",
	Short: "Import issues from a JSON snapshot",
	Long: `Upserts issues from a snapshot previously produced by export.
Importing the same snapshot twice is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := setupServices(false); err != nil {
		return err
	}
	defer closeServices()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	count, err := issueStore.ImportSnapshot(context.Background(), f)
	if err != nil {
		return fmt.Errorf("import failed after %d issues: %w", count, err)
	}

	cmd.Printf("Imported %d issues.\n", count)
	return nil
}

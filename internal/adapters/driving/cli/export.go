package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export synced issues as a JSON snapshot",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if err := setupServices(false); err != nil {
		return err
	}
	defer closeServices()

	w := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	if err := issueStore.ExportSnapshot(context.Background(), cfg.GitHub.Repo, w); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOutput != "" {
		cmd.Printf("Snapshot written to %s\n", exportOutput)
	}
	return nil
}

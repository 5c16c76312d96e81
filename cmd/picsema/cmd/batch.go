package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"picsema/internal/ingest"
)

var batchCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Ingest every supported image under a directory",
	Long: `Ingest every supported image under a directory, recursively.

Images are processed concurrently with a bounded worker pool. Individual
failures do not stop the run; they are listed in the final report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var service *ingest.Service
		return withApp([]interface{}{&service}, func(ctx context.Context) error {
			report, err := service.IngestDirectory(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("ingested %d image(s) in %s\n",
				len(report.Succeeded), report.Finished.Sub(report.Started).Round(10*time.Millisecond))
			for _, failure := range report.Failed {
				fmt.Printf("failed   %s (stage %s): %s\n", failure.Path, failure.Stage, failure.Reason)
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d image(s) failed", len(report.Failed))
			}
			return nil
		})
	},
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"picsema/internal/ingest"
	"picsema/internal/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a single image into the index",
	Long: `Ingest a single image into the index.

The file must live under one of the allowed directories. It is captioned,
tagged, embedded, and written to every metric collection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var service *ingest.Service
		return withApp([]interface{}{&service}, func(ctx context.Context) error {
			record, err := service.IngestFile(ctx, args[0], model.SourceUpload)
			if err != nil {
				return err
			}
			printRecord(record)
			return nil
		})
	},
}

func printRecord(record *model.ImageRecord) {
	fmt.Printf("image id:    %s\n", record.ImageID)
	fmt.Printf("file:        %s (%dx%d %s, %d bytes)\n",
		record.FileName, record.Width, record.Height, record.Format, record.FileSize)
	fmt.Printf("tags:        %s\n", strings.Join(record.AITags, ", "))
	fmt.Printf("description: %s\n", record.AIDescription)
	fmt.Printf("model:       %s\n", record.ModelUsed)
	if record.GPS != nil {
		fmt.Printf("location:    %.5f, %.5f", record.GPS.Latitude, record.GPS.Longitude)
		if record.LocationName != "" {
			fmt.Printf(" (%s)", record.LocationName)
		}
		fmt.Println()
	}
}

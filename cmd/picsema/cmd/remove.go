package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"picsema/internal/vectorstore"
)

var removeCmd = &cobra.Command{
	Use:   "remove <image-id>",
	Short: "Remove an image from every metric collection",
	Long: `Remove an image from every metric collection.

Removal matches on the stored image id and is idempotent; removing an id
that was never ingested is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var store *vectorstore.Store
		return withApp([]interface{}{&store}, func(ctx context.Context) error {
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		})
	},
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "picsema",
	Short: "Semantic image index with per-metric similarity search",
	Long: `picsema ingests images into a multi-metric vector index.

Each image is captioned and tagged by a vision model, embedded, and stored
redundantly in one collection per distance metric (cosine, euclid, dot,
manhattan). Searches run against every metric and return the per-metric
rankings side by side.`,
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(removeCmd)
}

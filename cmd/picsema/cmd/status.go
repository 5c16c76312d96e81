package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"picsema/internal/history"
	"picsema/internal/metrics"
	"picsema/internal/vectorstore"
)

var statusRecent int

func init() {
	statusCmd.Flags().IntVarP(&statusRecent, "recent", "r", 10,
		"number of recent ledger entries to show")
}

type statusDeps struct {
	fx.In

	Store   *vectorstore.Store
	Ledger  *history.Ledger  `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection sizes and recent ingestion history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var deps statusDeps
		return withApp([]interface{}{&deps}, func(ctx context.Context) error {
			stats, err := deps.Store.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Println("collections:")
			for _, stat := range stats {
				state := fmt.Sprintf("%d point(s)", stat.Points)
				if !stat.Exists {
					state = "missing"
				}
				fmt.Printf("  %-28s %s\n", stat.Collection, state)
				if deps.Metrics != nil {
					deps.Metrics.SetCollectionPoints(stat.Collection, float64(stat.Points))
				}
			}

			if deps.Ledger == nil {
				return nil
			}

			counts, err := deps.Ledger.CountByStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Println("ingestions:")
			for _, status := range []history.IngestStatus{
				history.StatusSuccess, history.StatusDegraded, history.StatusFailed,
			} {
				fmt.Printf("  %-10s %d\n", status, counts[status])
			}

			entries, err := deps.Ledger.RecentIngests(ctx, statusRecent)
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				fmt.Println("recent:")
			}
			for _, e := range entries {
				line := fmt.Sprintf("  %s  %-9s %s", e.IngestedAt.Format("2006-01-02 15:04:05"), e.Status, e.FilePath)
				if e.Status == history.StatusFailed {
					line += fmt.Sprintf(" (stage %s)", e.FailureStage)
				}
				fmt.Println(line)
			}
			return nil
		})
	},
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"picsema/internal/model"
	"picsema/internal/search"
)

var (
	searchImagePath string
	searchLimit     uint64
	searchMetrics   []string
	searchTags      []string
)

func init() {
	searchCmd.Flags().StringVarP(&searchImagePath, "image", "i", "",
		"search with an example image instead of a text query")
	searchCmd.Flags().Uint64VarP(&searchLimit, "limit", "l", 0,
		"maximum results per metric (0 uses the configured default)")
	searchCmd.Flags().StringSliceVarP(&searchMetrics, "metric", "m", nil,
		"metrics to query (cosine, euclid, dot, manhattan); default all")
	searchCmd.Flags().StringSliceVarP(&searchTags, "tag", "t", nil,
		"only return results carrying every given tag")
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index by text or example image",
	Long: `Search the index by text or example image.

The query is embedded once and run against every requested metric
collection. Results are printed per metric so the rankings can be compared.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchImagePath == "" && len(args) == 0 {
			return fmt.Errorf("either a text query or --image is required")
		}

		metrics, err := parseMetrics(searchMetrics)
		if err != nil {
			return err
		}
		req := search.Request{Metrics: metrics, Limit: searchLimit, Tags: searchTags}

		var service *search.Service
		return withApp([]interface{}{&service}, func(ctx context.Context) error {
			var resp *model.SearchResponse
			if searchImagePath != "" {
				data, err := os.ReadFile(searchImagePath)
				if err != nil {
					return err
				}
				resp, err = service.ByImage(ctx, data, req)
				if err != nil {
					return err
				}
			} else {
				var err error
				resp, err = service.ByText(ctx, args[0], req)
				if err != nil {
					return err
				}
			}
			printResponse(resp)
			return nil
		})
	},
}

func parseMetrics(names []string) ([]model.Metric, error) {
	if len(names) == 0 {
		return nil, nil
	}
	metrics := make([]model.Metric, 0, len(names))
	for _, name := range names {
		metric := model.Metric(strings.ToLower(strings.TrimSpace(name)))
		switch metric {
		case model.MetricCosine, model.MetricEuclid, model.MetricDot, model.MetricManhattan:
			metrics = append(metrics, metric)
		default:
			return nil, fmt.Errorf("unknown metric %q", name)
		}
	}
	return metrics, nil
}

func printResponse(resp *model.SearchResponse) {
	for _, metric := range model.AllMetrics() {
		results, ok := resp.ByMetric[metric]
		if !ok {
			continue
		}
		fmt.Printf("== %s ==\n", metric)
		if len(results) == 0 {
			fmt.Println("  no results")
			continue
		}
		for i, r := range results {
			fmt.Printf("  %2d. %-38s score=%.4f  %s\n",
				i+1, r.ImageID, r.Score, r.Record.FileName)
			if len(r.Record.AITags) > 0 {
				fmt.Printf("      tags: %s\n", strings.Join(r.Record.AITags, ", "))
			}
		}
	}
	for _, metric := range resp.Degraded {
		fmt.Printf("warning: metric %s unavailable\n", metric)
	}
}

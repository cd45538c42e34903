package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/diagroute/internal/infra/batchio"
	"github.com/aalvaropc/diagroute/internal/infra/logger"
	"github.com/aalvaropc/diagroute/internal/infra/workspacefinder"
	"github.com/aalvaropc/diagroute/internal/usecase"
)

func batchCmd() *cobra.Command {
	var file string
	var workers int
	var out string
	var rulebook string

	c := &cobra.Command{
		Use:   "batch",
		Short: "Classify every request in a text or JSONL file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := batchio.NewReader().ReadFile(file)
			if err != nil {
				return err
			}

			engine, err := loadEngine(rulebook)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("workers") {
				workers = defaultWorkers()
			}

			start := time.Now()
			results, err := usecase.NewClassifyBatch(engine, workers).Execute(cmd.Context(), items)
			if err != nil {
				return err
			}
			counts := batchio.Summary(results)
			logger.L().Info("batch.done", "items", len(results), "errors", counts["ERROR"], "workers", workers, logger.Since(start))

			if strings.TrimSpace(out) == "" || out == "-" {
				return batchio.WriteResults(cmd.OutOrStdout(), results)
			}
			if err := batchio.WriteFile(out, results); err != nil {
				return err
			}
			printBatchSummary(cmd.OutOrStdout(), results, counts)
			fmt.Fprintf(cmd.OutOrStdout(), "Results:   %s\n", out)
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "Requests file: one per line, or .jsonl with {\"id\",\"request\"} (use - for stdin)")
	c.Flags().IntVar(&workers, "workers", 4, "Concurrent classifications (default from diagroute.yaml)")
	c.Flags().StringVarP(&out, "out", "o", "", "Write JSONL results to this file instead of stdout")
	c.Flags().StringVar(&rulebook, "rulebook", "", "Rulebook file (default: workspace rulebook or embedded)")

	_ = c.MarkFlagRequired("file")
	return c
}

// defaultWorkers reads batch.workers from the enclosing workspace, if any.
func defaultWorkers() int {
	if root, err := resolveWorkspaceRoot(""); err == nil {
		if cfg, err := workspacefinder.LoadConfig(root); err == nil {
			return cfg.Batch.Workers
		}
	}
	return 4
}

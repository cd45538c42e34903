package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/infra/logger"
	"github.com/aalvaropc/diagroute/internal/infra/watch"
	"github.com/aalvaropc/diagroute/internal/usecase"
)

// errSuiteFailed marks a completed run with failing cases.
var errSuiteFailed = errors.New("suite failed")

func runCmd() *cobra.Command {
	var workspace string
	var suite string
	var rulebook string
	var vars []string
	var noSave bool
	var format string
	var watchFiles bool

	c := &cobra.Command{
		Use:   "run",
		Short: "Run a regression suite against the classifier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			overrides, err := parseVars(vars)
			if err != nil {
				return err
			}

			ws, err := loadWorkspace(workspace, rulebook)
			if err != nil {
				return err
			}
			suitePath, err := resolveSuitePath(ws, suite)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !watchFiles {
				return runOnce(cmd.Context(), out, ws, suitePath, overrides, noSave, format)
			}

			paths := []string{suitePath}
			if ws.rulebookPath != "" {
				paths = append(paths, ws.rulebookPath)
			}

			report := func() {
				err := runOnce(cmd.Context(), out, ws, suitePath, overrides, noSave, format)
				if err != nil && !errors.Is(err, errSuiteFailed) {
					fmt.Fprintf(out, "error: %v\n", err)
				}
				fmt.Fprintf(out, "\nwatching %s (ctrl+c to stop)\n", strings.Join(paths, ", "))
			}
			report()

			return watch.New().Run(cmd.Context(), paths, func(changed []string) {
				logger.L().Info("suite.watch.changed", "files", changed)
				if ws.rulebookPath != "" {
					engine, err := newEngine(ws.rulebookPath)
					if err != nil {
						fmt.Fprintf(out, "rulebook error: %v\n", err)
						return
					}
					ws.engine = engine
				}
				report()
			})
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&suite, "suite", "s", "", "Suite name or path (required)")
	c.Flags().StringVar(&rulebook, "rulebook", "", "Rulebook file (default: from diagroute.yaml)")
	c.Flags().StringArrayVar(&vars, "var", nil, "Override a suite variable (key=value, repeatable)")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&watchFiles, "watch", false, "Re-run when the suite or rulebook changes")

	_ = c.MarkFlagRequired("suite")
	return c
}

func runOnce(ctx context.Context, w io.Writer, ws *workspaceCtx, suitePath string, overrides domain.Vars, noSave bool, format string) error {
	store := ws.store
	if noSave {
		store = nil
	}

	uc := usecase.NewRunSuite(ws.suites, ws.engine, store,
		usecase.WithRulebookName(ws.engine.Rulebook().Name))

	start := time.Now()
	run, runID, err := uc.Execute(ctx, suitePath, overrides)
	if err != nil {
		// Print what completed before the error.
		_ = printRun(w, run, runID, format)
		return err
	}

	if err := printRun(w, run, runID, format); err != nil {
		return err
	}

	fails := run.Failures()
	logger.L().Info("suite.run.finished",
		"suite", run.SuiteName,
		"cases", len(run.Results),
		"failures", fails,
		"run_id", runID,
		logger.Since(start),
	)
	if fails > 0 {
		return fmt.Errorf("%w (%d failed case(s))", errSuiteFailed, fails)
	}
	return nil
}

func parseVars(in []string) (domain.Vars, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := domain.Vars{}
	for _, kv := range in {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --var %q (expected key=value)", kv)
		}
		out[k] = v
	}
	return out, nil
}

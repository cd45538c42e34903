package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/diagroute/internal/infra/fsworkspace"
	"github.com/aalvaropc/diagroute/internal/infra/logger"
	"github.com/aalvaropc/diagroute/internal/infra/workspacefinder"
	"github.com/aalvaropc/diagroute/internal/ui/tui"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	var closeLog func() error

	cmd := &cobra.Command{
		Use:          "diagroute",
		Short:        "diagroute: pick the diagram tool for a maths visualization request",
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			closeLog = setupLogging(c.Name(), debug)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if closeLog != nil {
				_ = closeLog()
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			engine, err := loadEngine("")
			if err != nil {
				return err
			}

			deps := tui.Deps{
				WorkspaceLocator:     workspacefinder.NewFinder(),
				WorkspaceInitializer: fsworkspace.NewInitializer(),
				Classifier:           engine,
				Logger:               logger.L(),
				Debug:                debug,
			}

			return tui.Run(deps)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .diagroute/logs/diagroute.log")

	cmd.AddCommand(
		classifyCmd(),
		explainCmd(),
		batchCmd(),
		runCmd(),
		validateCmd(),
		suitesCmd(),
		rulesCmd(),
		schemaCmd(),
		initCmd(),
		versionCmd(),
		serveCmd(),
	)
	return cmd
}

// setupLogging writes logs under the enclosing workspace, or the working
// directory when there is none. Commands keep running if the log file cannot be opened.
func setupLogging(command string, debug bool) func() error {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	wd, _ = filepath.Abs(wd)

	logRoot := wd
	if root, ferr := workspacefinder.NewFinder().FindRoot(wd); ferr == nil && root != "" {
		logRoot = root
	} else if command != "diagroute" {
		// Outside a workspace one-shot commands log nowhere rather than
		// leaving a .diagroute directory behind.
		return nil
	}

	cleanup, _ := logger.Setup(logger.Config{
		Root:    logRoot,
		Debug:   debug,
		Command: command,
	})
	return cleanup
}

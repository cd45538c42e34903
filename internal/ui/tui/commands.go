package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/infra/runstore"
	"github.com/aalvaropc/diagroute/internal/infra/workspacefinder"
	"github.com/aalvaropc/diagroute/internal/infra/yamlsuite"
	"github.com/aalvaropc/diagroute/internal/ports"
	"github.com/aalvaropc/diagroute/internal/usecase"
)

const classifyTimeout = 10 * time.Second

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, false)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdClassify(cl ports.Classifier, request string, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		if cl == nil {
			return classifyDoneMsg{err: errors.New("Classifier is nil")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), classifyTimeout)
		defer cancel()

		ex, err := cl.Explain(ctx, request)
		if err != nil {
			log.Warn("classify.failed", "err", err)
		} else {
			log.Info("classify.done", "tool", ex.Classification.Tool, "rule", ex.Classification.Rule)
		}
		return classifyDoneMsg{ex: ex, err: err}
	}
}

func cmdLoadSuites(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return suitesLoadedMsg{root: root, err: err}
		}

		loader := yamlsuite.NewLoader(yamlsuite.WithSuitesDir(cfg.Paths.SuitesDir))
		refs, err := loader.ListSuites(root)
		return suitesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func listenRunner(ch <-chan suiteRunDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return suiteRunDoneMsg{err: errors.New("runner channel closed")}
		}
		return msg
	}
}

func startSuiteRunAsync(
	workspaceRoot, suitePath string,
	cl ports.Classifier,
	log *slog.Logger,
	debug bool,
) (chan suiteRunDoneMsg, tea.Cmd) {
	ch := make(chan suiteRunDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("suite.run.start",
			"workspace", workspaceRoot,
			"suite_path", suitePath,
			"debug", debug,
		)

		cfg, err := workspacefinder.LoadConfig(workspaceRoot)
		if err != nil {
			log.Error("suite.run.load_config.failed", "err", err)
			ch <- suiteRunDoneMsg{err: err}
			return
		}

		loader := yamlsuite.NewLoader(yamlsuite.WithSuitesDir(cfg.Paths.SuitesDir))
		store := runstore.NewJSONStore(workspaceRoot, cfg, runstore.WithIndex(true))
		uc := usecase.NewRunSuite(loader, cl, store)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		run, id, execErr := uc.Execute(ctx, suitePath, nil)

		if execErr != nil {
			log.Error("suite.run.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("suite.run.finished", "saved_id", id, "cases", len(run.Results), "failures", run.Failures())
		}

		for _, cr := range run.Results {
			switch {
			case cr.Failed():
				log.Warn("case.failed",
					"name", cr.Name,
					"tool", string(cr.Classification.Tool),
					"error", cr.Error,
					"violations", len(cr.Violations),
				)
			case debug:
				log.Debug("case.ok",
					"name", cr.Name,
					"tool", string(cr.Classification.Tool),
					"rule", cr.Classification.Rule,
				)
			}
		}

		ch <- suiteRunDoneMsg{run: run, id: id, err: execErr}
	}()

	return ch, listenRunner(ch)
}

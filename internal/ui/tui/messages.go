package tui

import "github.com/aalvaropc/diagroute/internal/domain"

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type classifyDoneMsg struct {
	ex  domain.Explanation
	err error
}

type suitesLoadedMsg struct {
	root string
	refs []domain.SuiteRef
	err  error
}

type suiteRunDoneMsg struct {
	run domain.SuiteRun
	id  string
	err error
}

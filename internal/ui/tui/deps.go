package tui

import (
	"log/slog"

	"github.com/aalvaropc/diagroute/internal/ports"
)

type Deps struct {
	WorkspaceLocator     ports.WorkspaceLocator
	WorkspaceInitializer ports.WorkspaceInitializer
	Classifier           ports.Classifier

	Logger *slog.Logger
	Debug  bool
}

package ports

import "github.com/aalvaropc/diagroute/internal/domain"

// SuiteLoader loads regression suites from a source (e.g., filesystem).
type SuiteLoader interface {
	LoadSuite(path string) (domain.Suite, error)
	ListSuites(root string) ([]domain.SuiteRef, error)
}

package ports

import "github.com/aalvaropc/diagroute/internal/domain"

// RunStore persists suite runs for reproducibility.
type RunStore interface {
	SaveRun(run domain.SuiteRun) (id string, err error)
}

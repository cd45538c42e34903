package ports

import "github.com/aalvaropc/diagroute/internal/domain"

// RulebookLoader loads classifier vocabulary from a source (e.g., filesystem).
type RulebookLoader interface {
	LoadRulebook(path string) (domain.Rulebook, error)
}

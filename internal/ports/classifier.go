package ports

import (
	"context"

	"github.com/aalvaropc/diagroute/internal/domain"
)

// Classifier routes a visualization request to a rendering tool.
type Classifier interface {
	Classify(ctx context.Context, request string) (domain.Classification, error)
	Explain(ctx context.Context, request string) (domain.Explanation, error)
}

package chi

import (
	"context"

	"github.com/kailas-cloud/shopassist/internal/domain"
	assistantuc "github.com/kailas-cloud/shopassist/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/shopassist/internal/usecase/health"
)

// Assistant answers a single question.
type Assistant interface {
	Ask(ctx context.Context, text string, loc *domain.Location) (assistantuc.Response, error)
}

// HealthChecker aggregates dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

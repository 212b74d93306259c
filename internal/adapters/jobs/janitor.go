package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/application"
)

// Janitor periodically removes download artifacts that were never claimed,
// along with their working directories.
type Janitor struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

func NewJanitor(logger *slog.Logger, service *application.Service, interval time.Duration) *Janitor {
	return &Janitor{logger: logger, service: service, interval: interval}
}

func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := j.service.SweepExpired(ctx)
			if err != nil {
				j.logger.ErrorContext(ctx, "artifact sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				j.logger.InfoContext(ctx, "expired artifacts removed", "count", removed)
			}
		}
	}
}

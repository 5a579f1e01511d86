package radicacion

import (
	"context"
	"time"

	"github.com/tramites/backend/internal/domain/radicacion"
	"go.uber.org/zap"
)

// CounterCleanupService retires counters of past years. Deactivated rows are
// kept so issued numbers stay explainable; they only leave the statistics.
type CounterCleanupService struct {
	counters       radicacion.CounterStore
	retentionYears int
	logger         *zap.Logger
	now            func() time.Time
}

// NewCounterCleanupService creates a new CounterCleanupService. Counters of
// the current year and the retentionYears before it stay active.
func NewCounterCleanupService(counters radicacion.CounterStore, retentionYears int, logger *zap.Logger) *CounterCleanupService {
	if retentionYears < 0 {
		retentionYears = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterCleanupService{
		counters:       counters,
		retentionYears: retentionYears,
		logger:         logger,
		now:            time.Now,
	}
}

// Cutoff returns the first year that stays active
func (s *CounterCleanupService) Cutoff() int {
	return s.now().Year() - s.retentionYears
}

// Run deactivates every counter older than the cutoff year
func (s *CounterCleanupService) Run(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()
	n, err := s.counters.DeactivateBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Counter cleanup failed", zap.Int("cutoff_year", cutoff), zap.Error(err))
		return 0, err
	}
	s.logger.Info("Counter cleanup completed",
		zap.Int("cutoff_year", cutoff),
		zap.Int64("deactivated", n))
	return n, nil
}

package tramite

import (
	"context"
	"time"

	"github.com/tramites/backend/internal/domain/tramite"
)

// Metrics receives the service's measurements. The telemetry package
// provides the OpenTelemetry implementation.
type Metrics interface {
	// RecordAllocation records one filing number allocation, successful or not
	RecordAllocation(ctx context.Context, categoryCode string, attempts int, elapsed time.Duration, err error)
	// RecordFiled counts a newly filed trámite
	RecordFiled(ctx context.Context, categoryCode string)
	// RecordTransition counts a status change
	RecordTransition(ctx context.Context, from, to tramite.Status)
	// RecordPublicLookup counts an anonymous lookup and whether the cache answered it
	RecordPublicLookup(ctx context.Context, cacheHit bool, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordAllocation(context.Context, string, int, time.Duration, error) {}
func (noopMetrics) RecordFiled(context.Context, string) {}
func (noopMetrics) RecordTransition(context.Context, tramite.Status, tramite.Status) {}
func (noopMetrics) RecordPublicLookup(context.Context, bool, error) {}

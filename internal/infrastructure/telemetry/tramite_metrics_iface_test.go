package telemetry_test

import (
	apptramite "github.com/tramites/backend/internal/application/tramite"
	"github.com/tramites/backend/internal/infrastructure/telemetry"
)

var _ apptramite.Metrics = (*telemetry.TramiteMetrics)(nil)

// Package middleware provides the HTTP middleware of the trámites API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/domain/tenancy"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing opens one server span per request, named after the route
// pattern ("POST /api/v1/tramites/:id/transitions").
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if cfg.Enabled {
		return otelgin.Middleware(cfg.ServiceName)
	}
	return func(c *gin.Context) { c.Next() }
}

// TracingAttributeInjector tags the request span with the request ID and,
// when mounted after TenantScope, the tenant scope and the actor.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(requestAttributes(c)...)
		}
		c.Next()
	}
}

func requestAttributes(c *gin.Context) []attribute.KeyValue {
	ctx := c.Request.Context()
	var attrs []attribute.KeyValue
	if id := GetRequestID(c); id != "" {
		attrs = append(attrs, attribute.String("request_id", id))
	}
	if scope, err := tenancy.ScopeFromContext(ctx); err == nil {
		attrs = append(attrs, attribute.String("tenant_scope", scope.String()))
	}
	if actor, err := tenancy.ActorFromContext(ctx); err == nil {
		attrs = append(attrs,
			attribute.String("user_id", actor.UserID.String()),
			attribute.String("role", string(actor.Role)))
	}
	return attrs
}

// SpanErrorMarker records the status of failed requests on the span. Only
// 5xx sets the span status to Error; a 404 or 409 is a normal answer.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		status := c.Writer.Status()
		if !span.IsRecording() || status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request and, once the handlers have run,
// tags it with the request id and the operator.
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), spanAttributes()}
}

// spanAttributes must run inside the otelgin span, which ends when otelgin returns
func spanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if id := logger.GetRequestID(ctx); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if operator := logger.GetOperator(ctx); operator != "" {
			span.SetAttributes(attribute.String("operator", operator))
		}
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request. It must run before EnrichContext so the
// trace id reported to clients matches the exported span.
func Tracing(service string, provider trace.TracerProvider) gin.HandlerFunc {
	opts := []otelgin.Option{}
	if provider != nil {
		opts = append(opts, otelgin.WithTracerProvider(provider))
	}
	return otelgin.Middleware(service, opts...)
}

// Package middleware 提供 HTTP 中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"idea-forge-api/pkg/logger"
)

// TraceIDHeader 响应中回传的 trace ID
const TraceIDHeader = "X-Trace-ID"

// Trace OpenTelemetry 追踪中间件
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 把当前 span 关联到日志上下文，并给 span 补充会话与请求属性
//
// 需放在 Trace 与 RequestID 之后。
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		sc := span.SpanContext()
		if !sc.IsValid() {
			c.Next()
			return
		}

		traceID := sc.TraceID().String()
		c.Set("trace_id", traceID)
		c.Header(TraceIDHeader, traceID)

		ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
		ctx = logger.WithContext(ctx, logger.SpanIDKey, sc.SpanID().String())
		c.Request = c.Request.WithContext(ctx)

		if rid := c.GetString(ctxKeyRequestID); rid != "" {
			span.SetAttributes(attribute.String("idea.request_id", rid))
		}
		if sid := c.GetString(ctxKeySessionID); sid != "" {
			span.SetAttributes(attribute.String("idea.session_id", sid))
		}
		if format := c.Query("format"); format != "" {
			span.SetAttributes(attribute.String("idea.export_format", format))
		}

		c.Next()
	}
}

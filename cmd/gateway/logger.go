package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kestrelmem/semanticmemory/observability"
)

// ginZapLogger logs each request through the shared zap logger at
// debug level.
func ginZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// logStepEvent adapts an observability.Hook into structured zap log
// lines. Non-error step events only log when debug is true; error
// events always log via Warn.
func logStepEvent(log *zap.Logger, debug bool) observability.Hook {
	return func(ev observability.StepEvent) {
		if ev.Err == nil && !debug {
			return
		}
		fields := []zap.Field{
			zap.String("step", string(ev.Step)),
		}
		if ev.CacheID != "" {
			fields = append(fields, zap.String("cache_id", ev.CacheID))
		}
		if ev.CacheScore != 0 {
			fields = append(fields, zap.Float64("score", ev.CacheScore))
		}
		if ev.Err != nil {
			fields = append(fields, zap.Error(ev.Err))
			log.Warn("cache step", fields...)
			return
		}
		log.Debug("cache step", fields...)
	}
}

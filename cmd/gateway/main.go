// Command gateway is a demo OpenAI-compatible HTTP server that wires
// memory.Memory in front of a real upstream chat-completions call,
// delegating cache hit/miss/replay entirely to the semanticmemory core.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kestrelmem/semanticmemory/config"
	"github.com/kestrelmem/semanticmemory/embedding/openai"
	"github.com/kestrelmem/semanticmemory/internal/logging"
	"github.com/kestrelmem/semanticmemory/internal/obsmetrics"
	"github.com/kestrelmem/semanticmemory/memory"
	providerOpenAI "github.com/kestrelmem/semanticmemory/provider/openai"
)

func main() {
	log := logging.Default()
	defer log.Sync()

	obsmetrics.Register()

	embedder := openai.New(
		envOr("EMBEDDING_ENDPOINT", "https://api.openai.com/v1/embeddings"),
		envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		envOr("EMBEDDING_API_KEY_ENV", "OPENAI_API_KEY"),
		envIntOr("EMBEDDING_DIMENSIONS", 1536),
	)

	cfg := config.Config{
		Model:               embedder,
		ModelName:           envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		Threshold:           envFloatOr("CACHE_THRESHOLD", 0.92),
		TTL:                 time.Duration(envIntOr("CACHE_TTL_SECONDS", 14*24*3600)) * time.Second,
		Debug:               os.Getenv("DEBUG_MODE") == "true",
		CacheMode:           config.CacheMode(envOr("CACHE_MODE", string(config.ModeDefault))),
		EmbeddingDimensions: envIntOr("EMBEDDING_DIMENSIONS", 1536),
		CollectionName:      envOr("CACHE_COLLECTION", "semantic-memory"),
	}

	cfg, err := config.LoadWithYAML(cfg, envOr("CONFIG_FILE", ""))
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	cfg.OnStepFinish = logStepEvent(log, cfg.Debug)

	mem, err := memory.CreateSemanticMemory(cfg)
	if err != nil {
		log.Fatal("failed to initialize semantic memory", zap.Error(err))
	}
	defer mem.Close()

	upstream := providerOpenAI.New(
		envOr("OPENAI_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		envOr("OPENAI_API_KEY_ENV", "OPENAI_API_KEY"),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), ginZapLogger(log))
	router.Use(corsMiddleware())

	h := &handler{mem: mem, upstream: upstream, log: log}
	router.OPTIONS("/v1/chat/completions", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.POST("/v1/chat/completions", h.completions)
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(obsmetrics.Handler()))

	port := envOr("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("starting gateway", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("gateway server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := mem.Wait(); err != nil {
		log.Warn("pending write-backs did not finish cleanly", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

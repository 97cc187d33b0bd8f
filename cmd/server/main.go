package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trustgate/internal/config"
	"trustgate/internal/gather"
	"trustgate/internal/metrics"
	"trustgate/internal/monitoring"
	"trustgate/internal/providers"
	"trustgate/internal/runner"
	"trustgate/internal/store"
)

func main() {
	logger := monitoring.NewLogger(slog.LevelInfo)
	slog.SetDefault(logger.Logger)

	cfg, err := config.Load(os.Getenv("TRUSTGATE_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	port := getEnvOrDefault("PORT", "8080")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")

	st, err := store.Open(dataDir)
	if err != nil {
		slog.Error("failed to open evaluation store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	appMetrics := monitoring.NewMetrics()
	observer := monitoring.Observer{Logger: logger, Metrics: appMetrics}

	var judge metrics.Judge
	if j := providers.NewJudgeClient(cfg.JudgeAPIKey, providers.WithJudgeObserver(observer)); j != nil {
		judge = j
	}
	gatherer := gather.New(
		providers.NewGitHubClient(cfg.GitHubToken, providers.WithGitHubObserver(observer)),
		providers.NewHFClient(providers.WithHFObserver(observer)),
		logger.Logger,
	)
	eng, err := runner.New(gatherer, metrics.Catalog(judge, cfg.SizeCeilings), cfg.MetricWeights(),
		runner.WithMetricTimeout(cfg.MetricTimeout),
		runner.WithBatchConcurrency(cfg.BatchConcurrency),
		runner.WithLogger(logger.Logger),
		runner.WithMetricsRecorder(appMetrics),
	)
	if err != nil {
		slog.Error("failed to build runner", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(monitoring.Middleware(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsConfig))

	api := &apiServer{
		runner:  eng,
		store:   st,
		metrics: appMetrics,
		logger:  logger,
	}

	r.GET("/health", api.health)
	r.GET("/stats", api.stats)
	r.POST("/evaluate", api.evaluate)
	r.GET("/evaluations", api.listEvaluations)
	r.GET("/evaluations/:id", api.getEvaluation)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}

// requestID tags every request with a stable identifier for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package monitoring provides structured logging and in-process counters
// for the evaluation pipeline.
package monitoring

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with domain-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger at the given level writing to stderr.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})
	return &Logger{Logger: slog.New(handler)}
}

// EvaluationLogger logs one finished evaluation.
func (l *Logger) EvaluationLogger(modelURL string, netScore float64, admitted bool, mode string, duration time.Duration) {
	l.Info("Evaluation Completed",
		"model_url", modelURL,
		"net_score", netScore,
		"admitted", admitted,
		"mode", mode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ProviderLogger logs one upstream metadata call.
func (l *Logger) ProviderLogger(provider, endpoint string, duration time.Duration, success bool) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "Provider Call",
		"provider", provider,
		"endpoint", endpoint,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}

// BatchLogger logs a finished batch run.
func (l *Logger) BatchLogger(size, completed, rejected, failed int, duration time.Duration) {
	l.Info("Batch Completed",
		"size", size,
		"completed", completed,
		"rejected", rejected,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
}

// RequestLogger logs HTTP request details.
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

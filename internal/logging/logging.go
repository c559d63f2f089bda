// Package logging provides the structured logger and its event bus wiring.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	eventbus "github.com/resolvent/resolvent/internal/eventbus"
	events "github.com/resolvent/resolvent/internal/events"
	reqid "github.com/resolvent/resolvent/internal/reqid"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// New creates a structured logger based on configuration.
func New(cfg Config) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// Register attaches event bus subscribers that log request and store
// activity through l. Call it once at startup, after eventbus.Use.
func Register(l *slog.Logger) {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		l.LogAttrs(ctx, slog.LevelInfo, "http request",
			slog.String("request_id", rid(ctx)),
			slog.String("method", e.Request.Method),
			slog.String("path", e.Request.URL.Path),
			slog.Int("status", e.Status),
			slog.Duration("duration", e.Duration),
		)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		level := slog.LevelInfo
		if len(e.Errors) > 0 {
			level = slog.LevelWarn
		}
		l.LogAttrs(ctx, level, "graphql operation",
			slog.String("request_id", rid(ctx)),
			slog.String("operation", e.OperationName),
			slog.String("type", e.OperationType),
			slog.Int("errors", len(e.Errors)),
			slog.Duration("duration", e.Duration),
		)
	})

	// Store operations only get logged when they fail or run slow.
	eventbus.Subscribe(func(ctx context.Context, e events.StoreOp) {
		if e.Err == nil && e.Duration < 100*time.Millisecond {
			return
		}
		attrs := []slog.Attr{
			slog.String("request_id", rid(ctx)),
			slog.String("op", e.Op),
			slog.String("kind", e.Kind),
			slog.Duration("duration", e.Duration),
		}
		if e.ID != "" {
			attrs = append(attrs, slog.String("id", e.ID))
		}
		if e.Err != nil {
			attrs = append(attrs, slog.String("error", e.Err.Error()))
			l.LogAttrs(ctx, slog.LevelWarn, "store operation failed", attrs...)
			return
		}
		l.LogAttrs(ctx, slog.LevelInfo, "slow store operation", attrs...)
	})
}

func rid(ctx context.Context) string {
	id, _ := reqid.FromContext(ctx)
	return id
}

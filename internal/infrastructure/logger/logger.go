// Package logger builds the process logger and carries request-scoped fields
// through contexts.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Service is stamped on every line so shipped logs can be told apart.
const Service = "leaveledger"

// Config selects the level (debug, info, warn, error) and the format
// (json, console). Unknown levels fall back to info.
type Config struct {
	Level  string
	Format string
}

// New logs to stdout.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", Service).
		Caller().
		Logger()
}

// parseLevel accepts the four configurable levels only; trace, panic and
// the like are not meant for the service config.
func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel
	}
	switch parsed {
	case zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel:
		return parsed
	}
	return zerolog.InfoLevel
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actorIDKey   contextKey = "actor_id"
)

// WithRequestID stores the request ID for FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithActorID stores the acting user's ID for FromContext.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithContext returns base enriched with the request-scoped fields of ctx.
func WithContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	c := base.With()
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		c = c.Str("request_id", id)
	}
	if id, ok := ctx.Value(actorIDKey).(string); ok && id != "" {
		c = c.Str("actor_id", id)
	}
	return c.Logger()
}

// FromContext returns the logger attached to ctx by zerolog's WithContext,
// enriched with the request-scoped fields.
func FromContext(ctx context.Context) zerolog.Logger {
	return WithContext(ctx, *zerolog.Ctx(ctx))
}

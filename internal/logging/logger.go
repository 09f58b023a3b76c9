// Package logging builds the structured logger used across the tool using log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level is the verbosity selected on the command line.
type Level int

const (
	// LevelInfo reports results only.
	LevelInfo Level = iota
	// LevelDebug adds schema and migration progress.
	LevelDebug
	// LevelVerbose adds every live database call.
	LevelVerbose
)

// SlogVerbose sits below slog.LevelDebug so that verbose records are
// filtered out unless LevelVerbose is selected.
const SlogVerbose = slog.LevelDebug - 4

// FromCount maps the number of -v flags onto a Level.
func FromCount(n int) Level {
	switch {
	case n <= 0:
		return LevelInfo
	case n == 1:
		return LevelDebug
	default:
		return LevelVerbose
	}
}

// Parse reads a level name.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "verbose", "trace":
		return LevelVerbose, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelVerbose:
		return "verbose"
	default:
		return "info"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelVerbose:
		return SlogVerbose
	default:
		return slog.LevelInfo
	}
}

// New creates a text logger writing to w at the given level.
func New(w io.Writer, level Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level.slogLevel(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == SlogVerbose {
					a.Value = slog.StringValue("VERBOSE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or a discarding logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return Discard()
}

// Verbose logs at the verbose level.
func Verbose(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, SlogVerbose, msg, args...)
}

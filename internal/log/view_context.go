package log

import (
	"context"
	"log/slog"
	"strings"
)

type viewLogContextKey struct{}

// ViewLogContext carries metadata identifying the table session a record
// belongs to.
type ViewLogContext struct {
	CommandPath string
	Profile     string
	Source      string
	SourceKind  string
	TableID     string
}

var ViewLogContextKey = viewLogContextKey{}

// WithViewLogContext merges non-empty fields from update into ctx.
func WithViewLogContext(ctx context.Context, update ViewLogContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	current := ViewLogContextFromContext(ctx)
	mergeStringField(&current.CommandPath, update.CommandPath)
	mergeStringField(&current.Profile, update.Profile)
	mergeStringField(&current.Source, update.Source)
	mergeStringField(&current.SourceKind, update.SourceKind)
	mergeStringField(&current.TableID, update.TableID)

	return context.WithValue(ctx, ViewLogContextKey, current)
}

// ViewLogContextFromContext extracts the session metadata from ctx.
func ViewLogContextFromContext(ctx context.Context) ViewLogContext {
	if ctx == nil {
		return ViewLogContext{}
	}
	if value, ok := ctx.Value(ViewLogContextKey).(ViewLogContext); ok {
		return value
	}
	return ViewLogContext{}
}

// ViewLogContextAttrs converts the session metadata to slog attributes,
// skipping empty fields.
func ViewLogContextAttrs(ctx context.Context) []slog.Attr {
	meta := ViewLogContextFromContext(ctx)
	attrs := make([]slog.Attr, 0, 5)

	appendStringAttr(&attrs, "command_path", meta.CommandPath)
	appendStringAttr(&attrs, "profile", meta.Profile)
	appendStringAttr(&attrs, "source", meta.Source)
	appendStringAttr(&attrs, "source_kind", meta.SourceKind)
	appendStringAttr(&attrs, "table_id", meta.TableID)

	return attrs
}

// LoggerWithViewContext returns logger annotated with the session metadata
// stored on ctx.
func LoggerWithViewContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	attrs := ViewLogContextAttrs(ctx)
	if logger == nil || len(attrs) == 0 {
		return logger
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return logger.With(args...)
}

func mergeStringField(target *string, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	*target = trimmed
}

func appendStringAttr(attrs *[]slog.Attr, key, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	*attrs = append(*attrs, slog.String(key, trimmed))
}

// Package observability carries per-build logging context. A build run tags
// its context with the build ID and current stage once; every log line
// emitted through the helpers below picks them up without threading
// attributes by hand.
package observability

import (
	"context"
	"log/slog"
)

type tagKey struct{}

// buildTag is the logging scope of one build run. Zero-value fields
// contribute no attributes.
type buildTag struct {
	buildID string
	stage   string
}

func tagFrom(ctx context.Context) buildTag {
	tag, _ := ctx.Value(tagKey{}).(buildTag)
	return tag
}

// WithBuildID returns a context whose log lines carry the build ID.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	tag := tagFrom(ctx)
	tag.buildID = buildID
	return context.WithValue(ctx, tagKey{}, tag)
}

// WithStage returns a context whose log lines carry the pipeline stage,
// keeping any build ID already set.
func WithStage(ctx context.Context, stage string) context.Context {
	tag := tagFrom(ctx)
	tag.stage = stage
	return context.WithValue(ctx, tagKey{}, tag)
}

func emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	tag := tagFrom(ctx)
	scoped := make([]slog.Attr, 0, len(attrs)+2)
	if tag.buildID != "" {
		scoped = append(scoped, slog.String("build.id", tag.buildID))
	}
	if tag.stage != "" {
		scoped = append(scoped, slog.String("stage", tag.stage))
	}
	slog.LogAttrs(ctx, level, msg, append(scoped, attrs...)...)
}

// DebugContext logs at debug level with the context's build attributes.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

// InfoContext logs at info level with the context's build attributes.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs at warn level with the context's build attributes.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs at error level with the context's build attributes.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

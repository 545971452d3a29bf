package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// captureOutput routes the default logger into a buffer for one test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestEmitCarriesBuildAttributes(t *testing.T) {
	buf := captureOutput(t)

	ctx := WithStage(WithBuildID(context.Background(), "build-xyz"), "resolve")
	InfoContext(ctx, "Routes resolved", slog.Int("count", 5))

	out := buf.String()
	for _, want := range []string{"build.id=build-xyz", "stage=resolve", "count=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestStageChangeKeepsBuildID(t *testing.T) {
	buf := captureOutput(t)

	ctx := WithBuildID(context.Background(), "build-123")
	ctx = WithStage(ctx, "resolve")
	ctx = WithStage(ctx, "outputs")
	WarnContext(ctx, "Slow stage")

	out := buf.String()
	if !strings.Contains(out, "stage=outputs") {
		t.Errorf("expected the latest stage, got %q", out)
	}
	if !strings.Contains(out, "build.id=build-123") {
		t.Errorf("expected the build ID to survive stage changes, got %q", out)
	}
}

func TestUntaggedContextAddsNothing(t *testing.T) {
	buf := captureOutput(t)

	ErrorContext(context.Background(), "Bare failure")

	out := buf.String()
	if strings.Contains(out, "build.id") || strings.Contains(out, "stage=") {
		t.Errorf("expected no scope attributes, got %q", out)
	}
	if !strings.Contains(out, "Bare failure") {
		t.Errorf("expected the message, got %q", out)
	}
}

func TestLevels(t *testing.T) {
	buf := captureOutput(t)

	ctx := WithBuildID(context.Background(), "b1")
	DebugContext(ctx, "debug line")
	InfoContext(ctx, "info line")
	WarnContext(ctx, "warn line")
	ErrorContext(ctx, "error line")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

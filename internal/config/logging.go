package config

import (
	"fmt"
	"strings"

	"github.com/docpress/docpress/internal/foundation/normalization"
)

// LogLevel is a configured logging verbosity, mapped onto slog levels by
// the observability package.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel canonicalizes a configured level. Unrecognized non-empty
// values fall back to info with a warning; empty stays empty for the defaults
// pass to fill.
func NormalizeLogLevel(raw string) (LogLevel, []string) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	level, err := logLevelNormalizer.NormalizeWithError(raw)
	if err != nil {
		return LogLevelInfo, []string{fmt.Sprintf("logging.level: %v; using %q", err, LogLevelInfo)}
	}
	return level, nil
}

// LogFormat selects the log handler: structured JSON or human-readable text.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json":    LogFormatJSON,
	"text":    LogFormatText,
	"console": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat canonicalizes a configured output format the same way
// NormalizeLogLevel does for levels.
func NormalizeLogFormat(raw string) (LogFormat, []string) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	format, err := logFormatNormalizer.NormalizeWithError(raw)
	if err != nil {
		return LogFormatText, []string{fmt.Sprintf("logging.format: %v; using %q", err, LogFormatText)}
	}
	return format, nil
}

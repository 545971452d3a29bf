package errors

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
)

// exitCodes maps categories to process exit codes, grouped in bands: 2-7 for
// user-correctable input, 8 for external systems, 11-12 for the build
// pipeline and daemon. Unmapped categories and unclassified errors exit 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryAuth:       5,
	CategoryConfig:     7,
	CategoryNetwork:    8,
	CategoryStore:      8,
	CategoryGit:        8,
	CategoryIndex:      8,
	CategoryNotify:     8,
	CategoryBuild:      11,
	CategoryContent:    11,
	CategoryFileSystem: 11,
	CategoryHistory:    11,
	CategoryDaemon:     12,
}

// CLIErrorAdapter turns the error a command returns into stderr output, an
// optional log record and a process exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a CLI error adapter. A nil logger falls back to
// slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor returns the exit code for err, 0 when err is nil.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	classified, ok := AsClassified(err)
	if !ok {
		return 1
	}
	code, mapped := exitCodes[classified.Category()]
	if !mapped {
		return 1
	}
	return code
}

// FormatError renders err for stderr. User-correctable categories show the
// bare message; everything else points at the verbose flag for the full
// classification and cause chain.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return err.Error()
	}
	switch classified.Category() {
	case CategoryConfig, CategoryValidation, CategoryAuth:
		return fmt.Sprintf("Error: %s", classified.Message())
	default:
		return fmt.Sprintf("Error: %s (use -v for details)", classified.Message())
	}
}

// HandleError reports err on stderr, logs it when warranted and exits the
// process. Fatal and unclassified errors are always logged; the rest only
// under the verbose flag.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	classified, _ := AsClassified(err)
	if a.verbose || classified == nil || classified.Severity() == SeverityFatal {
		a.logError(err, classified)
	}

	fmt.Fprintln(os.Stderr, a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

// logError emits a structured record for err. Classification and attached
// context become attributes, sorted for stable output.
func (a *CLIErrorAdapter) logError(err error, classified *ClassifiedError) {
	if classified == nil {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	level := slog.LevelError
	if classified.Severity() == SeverityWarning {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	if classified.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}

	detail := classified.Context()
	for _, key := range slices.Sorted(maps.Keys(detail)) {
		attrs = append(attrs, slog.Any(key, detail[key]))
	}

	a.logger.LogAttrs(context.Background(), level, classified.Message(), attrs...)
}

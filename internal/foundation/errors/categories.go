package errors

// ErrorCategory names the subsystem an error came from. Exit codes, retry
// decisions and log routing all key off the category rather than the message.
type ErrorCategory string

const (
	// Input problems the user can correct.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryNotFound   ErrorCategory = "not_found"

	// Failures talking to external systems.
	CategoryNetwork ErrorCategory = "network"
	CategoryStore   ErrorCategory = "store"
	CategoryGit     ErrorCategory = "git"
	CategoryIndex   ErrorCategory = "index"
	CategoryNotify  ErrorCategory = "notify"

	// Failures turning content into build outputs.
	CategoryBuild      ErrorCategory = "build"
	CategoryContent    ErrorCategory = "content"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryHistory    ErrorCategory = "history"

	// Daemon lifecycle failures.
	CategoryDaemon ErrorCategory = "daemon"
)

// ErrorSeverity grades impact. Warnings are logged and skipped over, errors
// fail the current operation, fatal errors end the run.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// RetryStrategy tells retry loops whether another attempt can help. Backoff
// is the only strategy that permits retries; user means the error needs
// human intervention first.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext carries structured key/value detail attached to an error. The
// CLI adapter folds it into verbose log output.
type ErrorContext map[string]any

// Set stores a value, allocating the map on first use so a nil ErrorContext
// is safe to build on.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		return ErrorContext{key: value}
	}
	c[key] = value
	return c
}

// GetString returns the value under key when it is present and a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	str, ok := c[key].(string)
	return str, ok
}

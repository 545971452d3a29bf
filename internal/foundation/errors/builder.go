package errors

// ErrorBuilder assembles a ClassifiedError through chained calls. The zero
// value is not usable; start with NewError or one of the category
// constructors below, which pick the severity and retry strategy that fit
// the subsystem.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder for the category with severity error and no
// retries. Use the modifier methods to deviate.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// WithCause attaches the underlying error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

// WithContext attaches a structured detail key/value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

// Fatal marks the error as run-ending.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// Warning marks the error as log-and-continue.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

// Retryable marks the error as worth retrying with backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	b.err.retry = RetryBackoff
	return b
}

// UserAction marks the error as needing human intervention before a retry
// can succeed.
func (b *ErrorBuilder) UserAction() *ErrorBuilder {
	b.err.retry = RetryUserAction
	return b
}

// Build finalizes the error. The builder must not be reused afterwards.
func (b *ErrorBuilder) Build() *ClassifiedError {
	built := b.err
	return &built
}

// Category constructors. Each bakes in the severity and retry strategy that
// matches how the subsystem's failures are handled: bad configuration or
// input ends the run, transport and storage problems are worth a backoff
// retry, auth needs new credentials before retrying, and best-effort
// publishing (notify) or malformed content only warns.
func ConfigError(msg string) *ErrorBuilder     { return NewError(CategoryConfig, msg).Fatal() }
func ValidationError(msg string) *ErrorBuilder { return NewError(CategoryValidation, msg).Fatal() }
func AuthError(msg string) *ErrorBuilder       { return NewError(CategoryAuth, msg).UserAction() }
func NetworkError(msg string) *ErrorBuilder    { return NewError(CategoryNetwork, msg).Retryable() }
func StoreError(msg string) *ErrorBuilder      { return NewError(CategoryStore, msg).Retryable() }
func GitError(msg string) *ErrorBuilder        { return NewError(CategoryGit, msg).Retryable() }
func IndexError(msg string) *ErrorBuilder      { return NewError(CategoryIndex, msg).Retryable() }
func BuildError(msg string) *ErrorBuilder      { return NewError(CategoryBuild, msg).Fatal() }
func ContentError(msg string) *ErrorBuilder    { return NewError(CategoryContent, msg).Warning() }
func HistoryError(msg string) *ErrorBuilder    { return NewError(CategoryHistory, msg) }
func DaemonError(msg string) *ErrorBuilder     { return NewError(CategoryDaemon, msg).Fatal() }

func NotifyError(msg string) *ErrorBuilder {
	return NewError(CategoryNotify, msg).Warning().Retryable()
}

func FileSystemError(msg string) *ErrorBuilder {
	return NewError(CategoryFileSystem, msg).Retryable()
}

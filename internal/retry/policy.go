// Package retry provides backoff policies and a retry executor for
// transient publishing failures. Route resolution and store reads never
// retry; only outbound publishing (search index, notify) goes through here.
package retry

import (
	"fmt"
	"time"

	"github.com/docpress/docpress/internal/foundation/normalization"
)

// Mode selects how the delay grows between attempts.
type Mode string

const (
	ModeFixed       Mode = "fixed"
	ModeLinear      Mode = "linear"
	ModeExponential Mode = "exponential"
)

var modeNormalizer = normalization.NewNormalizer(map[string]Mode{
	"fixed":       ModeFixed,
	"linear":      ModeLinear,
	"exponential": ModeExponential,
}, ModeLinear)

// ParseMode folds a free-form config value onto a Mode, defaulting to linear.
func ParseMode(raw string) Mode {
	return modeNormalizer.Normalize(raw)
}

// Policy holds tuned backoff settings. Values are fixed at construction.
type Policy struct {
	Mode       Mode          // fixed|linear|exponential
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // retry attempts after the first failure
}

// DefaultPolicy is linear growth from one second, capped at thirty, with two
// retries.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy from raw config fields. Zero or out-of-range
// fields keep their defaults, and the initial delay never exceeds the cap.
func NewPolicy(mode Mode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	switch mode {
	case ModeFixed, ModeLinear, ModeExponential:
		p.Mode = mode
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	p.Initial = min(p.Initial, p.Max)
	return p
}

// Delay computes the wait before the given retry attempt. Attempts count
// from 1; anything lower gets no delay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	var d time.Duration
	switch p.Mode {
	case ModeFixed:
		d = p.Initial
	case ModeExponential:
		d = p.Initial << (attempt - 1)
	default:
		d = p.Initial * time.Duration(attempt)
	}
	return min(d, p.Max)
}

// Validate rejects a policy that could never schedule a retry.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial delay must be positive")
	}
	if p.Max <= 0 {
		return fmt.Errorf("delay cap must be positive")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("retry count cannot be negative")
	}
	return nil
}

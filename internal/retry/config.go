package retry

import (
	"time"

	"github.com/docpress/docpress/internal/config"
)

// FromConfig maps retry settings onto a Policy. A nil section or malformed
// durations fall back to defaults.
func FromConfig(rc *config.RetryConfig) Policy {
	if rc == nil {
		return DefaultPolicy()
	}
	initial, _ := time.ParseDuration(rc.InitialDelay)
	maxDelay, _ := time.ParseDuration(rc.MaxDelay)
	return NewPolicy(ParseMode(rc.Backoff), initial, maxDelay, rc.MaxRetries)
}

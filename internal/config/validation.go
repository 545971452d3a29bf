package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/docpress/docpress/internal/foundation"
)

// Validate checks a normalized, defaulted configuration and returns a
// classified validation error listing every failing field.
func Validate(c *Config) error {
	chain := foundation.NewValidatorChain(
		validateSite,
		validateStore,
		validateSearch,
		validateNotify,
		validateDaemon,
		validateHistory,
	)
	return chain.Validate(c).ToError()
}

func validateSite(c *Config) foundation.ValidationResult {
	if c.Site.URL == "" {
		return foundation.Invalid(foundation.NewValidationError("site.url", "required", "site URL is required"))
	}
	u, err := url.Parse(c.Site.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return foundation.Invalid(foundation.NewValidationError("site.url", "invalid", fmt.Sprintf("not an absolute URL: %q", c.Site.URL)))
	}
	return foundation.Valid()
}

func validateStore(c *Config) foundation.ValidationResult {
	result := foundation.Valid()
	if c.Store.Endpoint == "" {
		result = result.Combine(foundation.Invalid(foundation.NewValidationError("store.endpoint", "required", "content store endpoint is required")))
	} else if u, err := url.Parse(c.Store.Endpoint); err != nil || !u.IsAbs() || u.Host == "" {
		result = result.Combine(foundation.Invalid(foundation.NewValidationError("store.endpoint", "invalid", fmt.Sprintf("not an absolute URL: %q", c.Store.Endpoint))))
	}
	if c.Store.Branch == "" {
		result = result.Combine(foundation.Invalid(foundation.NewValidationError("store.branch", "required", "content branch is required")))
	}
	if c.Store.PageSize < 1 || c.Store.PageSize > maxPageSize {
		result = result.Combine(foundation.Invalid(foundation.NewValidationError("store.page_size", "range", fmt.Sprintf("must be between 1 and %d", maxPageSize))))
	}
	if c.Store.Timeout != "" {
		if _, err := time.ParseDuration(c.Store.Timeout); err != nil {
			result = result.Combine(foundation.Invalid(foundation.NewValidationError("store.timeout", "invalid", fmt.Sprintf("not a duration: %q", c.Store.Timeout))))
		}
	}
	return result
}

func validateSearch(c *Config) foundation.ValidationResult {
	if c.Search == nil {
		return foundation.Valid()
	}
	result := foundation.Valid()
	if c.Search.AppID == "" {
		result = result.Combine(foundation.Invalid(foundation.NewValidationError("search.app_id", "required", "search application ID is required when search is configured")))
	}
	if c.Search.APIKeyEnv == "" {
		result = result.Combine(foundation.Invalid(foundation.NewValidationError("search.api_key_env", "required", "name of the API key environment variable is required when search is configured")))
	}
	return result
}

func validateNotify(c *Config) foundation.ValidationResult {
	if c.Notify == nil {
		return foundation.Valid()
	}
	if c.Notify.URL == "" {
		return foundation.Invalid(foundation.NewValidationError("notify.url", "required", "NATS URL is required when notify is configured"))
	}
	return foundation.Valid()
}

func validateDaemon(c *Config) foundation.ValidationResult {
	if c.Daemon == nil {
		return foundation.Valid()
	}
	result := foundation.Valid()
	if c.Daemon.Listen == "" {
		result = result.Combine(foundation.Invalid(foundation.NewValidationError("daemon.listen", "required", "listen address is required when daemon is configured")))
	}
	if c.Daemon.RebuildInterval != "" {
		if _, err := time.ParseDuration(c.Daemon.RebuildInterval); err != nil {
			result = result.Combine(foundation.Invalid(foundation.NewValidationError("daemon.rebuild_interval", "invalid", fmt.Sprintf("not a duration: %q", c.Daemon.RebuildInterval))))
		}
	}
	return result
}

func validateHistory(c *Config) foundation.ValidationResult {
	if c.History == nil {
		return foundation.Valid()
	}
	if c.History.Path == "" {
		return foundation.Invalid(foundation.NewValidationError("history.path", "required", "database path is required when history is configured"))
	}
	return foundation.Valid()
}

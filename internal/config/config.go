package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "github.com/docpress/docpress/internal/foundation/errors"
)

// Config is the root configuration for docpress. It is constructed once at
// startup and threaded through explicitly; domain code never reads the
// process environment on its own.
type Config struct {
	Version string         `yaml:"version"`
	Site    SiteConfig     `yaml:"site"`
	Store   StoreConfig    `yaml:"store"`
	Build   BuildConfig    `yaml:"build,omitempty"`
	Search  *SearchConfig  `yaml:"search,omitempty"`
	Notify  *NotifyConfig  `yaml:"notify,omitempty"`
	Daemon  *DaemonConfig  `yaml:"daemon,omitempty"`
	History *HistoryConfig `yaml:"history,omitempty"`
	Logging LoggingConfig  `yaml:"logging,omitempty"`
}

// SiteConfig describes the deployed site the generated routes belong to.
type SiteConfig struct {
	URL       string `yaml:"url"`        // Public origin, e.g. https://docs.example.org
	BasePath  string `yaml:"base_path"`  // Sub-path prefix for repository-page deployments, e.g. /tinadocs
	DocsRoute string `yaml:"docs_route"` // Route prefix for documentation pages, e.g. /docs
}

// StoreConfig describes the content store the resolver reads from.
type StoreConfig struct {
	Endpoint    string `yaml:"endpoint"`     // Content API base URL
	Branch      string `yaml:"branch"`       // Content branch to resolve against
	AuthToken   string `yaml:"auth_token"`   // Opaque bearer token, usually ${VAR} expanded
	ContentRoot string `yaml:"content_root"` // Root prefix of documentation records, e.g. docs
	PageSize    int    `yaml:"page_size"`    // Listing page size
	Timeout     string `yaml:"timeout"`      // Per-request timeout, duration string
}

// RequestTimeout parses the configured timeout, falling back to 30s.
func (s StoreConfig) RequestTimeout() time.Duration {
	if s.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// BuildConfig controls the build command output.
type BuildConfig struct {
	OutputDir string `yaml:"output_dir"`
	Strict    bool   `yaml:"strict"` // Fail the build on resolution errors instead of degrading
	Clean     bool   `yaml:"clean"`  // Remove the output dir before writing
}

// SearchConfig enables search index publishing when present.
type SearchConfig struct {
	AppID     string       `yaml:"app_id"`
	APIKeyEnv string       `yaml:"api_key_env"` // Name of the env var holding the admin API key
	IndexName string       `yaml:"index_name"`
	Retry     *RetryConfig `yaml:"retry,omitempty"`
}

// NotifyConfig enables build event publishing when present.
type NotifyConfig struct {
	URL     string       `yaml:"url"`     // NATS server URL
	Subject string       `yaml:"subject"` // Subject for build events
	Bucket  string       `yaml:"bucket"`  // KV bucket holding the latest build status
	Retry   *RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig tunes backoff for outbound publishing. Route resolution and
// store reads are never retried, so only publishing surfaces carry one.
type RetryConfig struct {
	Backoff      string `yaml:"backoff,omitempty"` // fixed|linear|exponential
	MaxRetries   int    `yaml:"max_retries,omitempty"`
	InitialDelay string `yaml:"initial_delay,omitempty"` // Duration string
	MaxDelay     string `yaml:"max_delay,omitempty"`     // Duration string
}

// DaemonConfig configures periodic rebuild mode.
type DaemonConfig struct {
	Listen          string `yaml:"listen"`           // Status/metrics listen address
	RebuildInterval string `yaml:"rebuild_interval"` // Duration string between rebuilds
	Metrics         bool   `yaml:"metrics"`          // Expose Prometheus metrics
}

// Interval parses the rebuild interval, falling back to 30m.
func (d *DaemonConfig) Interval() time.Duration {
	if d == nil || d.RebuildInterval == "" {
		return 30 * time.Minute
	}
	iv, err := time.ParseDuration(d.RebuildInterval)
	if err != nil || iv <= 0 {
		return 30 * time.Minute
	}
	return iv
}

// HistoryConfig enables the build history store when present.
type HistoryConfig struct {
	Path string `yaml:"path"` // SQLite database path
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, expands, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	// Load .env files first so ${VAR} expansion below sees them.
	if loaded := loadDotEnv(); loaded != "" {
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", loaded)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, ferrors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	// Expand environment variables in the YAML content.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, ferrors.ConfigError("failed to unmarshal config").WithCause(err).Build()
	}

	if !strings.HasPrefix(config.Version, "1") {
		return nil, ferrors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected 1.x)", config.Version)).Build()
	}

	// Normalization pass (case-fold enumerations, path cleanup, flagged inconsistencies).
	warnings := Normalize(&config)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "config: %s\n", w)
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists, pass --force to overwrite", configPath)
	}

	example := Config{
		Version: "1.0",
		Site: SiteConfig{
			URL:       "https://docs.example.org",
			BasePath:  "/tinadocs",
			DocsRoute: "/docs",
		},
		Store: StoreConfig{
			Endpoint:    "https://content.example.dev/api",
			Branch:      "main",
			AuthToken:   "${DOCPRESS_STORE_TOKEN}",
			ContentRoot: "docs",
			PageSize:    50,
			Timeout:     "30s",
		},
		Build: BuildConfig{
			OutputDir: "./public",
			Clean:     true,
		},
		Search: &SearchConfig{
			AppID:     "YOUR_APP_ID",
			APIKeyEnv: "DOCPRESS_SEARCH_KEY",
			IndexName: "docs",
		},
		Daemon: &DaemonConfig{
			Listen:          ":8080",
			RebuildInterval: "30m",
			Metrics:         true,
		},
		History: &HistoryConfig{
			Path: "./docpress-history.db",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to render example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	return nil
}

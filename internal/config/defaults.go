package config

// Default values applied after normalization, so canonical values drive them.
const (
	DefaultDocsRoute  = "/docs"
	DefaultBranch     = "main"
	DefaultPageSize   = 50
	DefaultOutputDir  = "./public"
	DefaultListenAddr = ":8080"
	DefaultSubject    = "docpress.builds"
	DefaultKVBucket   = "docpress-status"
	DefaultIndexName  = "docs"
)

func applyDefaults(c *Config) {
	if c.Site.DocsRoute == "" {
		c.Site.DocsRoute = DefaultDocsRoute
	}
	if c.Store.Branch == "" {
		c.Store.Branch = DefaultBranch
	}
	if c.Store.PageSize <= 0 {
		c.Store.PageSize = DefaultPageSize
	}
	if c.Build.OutputDir == "" {
		c.Build.OutputDir = DefaultOutputDir
	}
	if c.Search != nil && c.Search.IndexName == "" {
		c.Search.IndexName = DefaultIndexName
	}
	if c.Notify != nil {
		if c.Notify.Subject == "" {
			c.Notify.Subject = DefaultSubject
		}
		if c.Notify.Bucket == "" {
			c.Notify.Bucket = DefaultKVBucket
		}
	}
	if c.Daemon != nil && c.Daemon.Listen == "" {
		c.Daemon.Listen = DefaultListenAddr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}

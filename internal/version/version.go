package version

// Version contains the application version information.
// Set via build-time ldflags in release builds:
// go build -ldflags "-X github.com/docpress/docpress/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also injected at build time.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

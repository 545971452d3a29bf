package version

import "testing"

func TestBuildMetadataDefaults(t *testing.T) {
	// Without ldflags the development defaults apply. Empty values would
	// break the --version output and the daemon status payload.
	for name, value := range map[string]string{
		"Version":   Version,
		"BuildTime": BuildTime,
		"GitCommit": GitCommit,
	} {
		if value == "" {
			t.Errorf("%s must have a default", name)
		}
	}

	if Version != "dev" {
		t.Logf("Version overridden via ldflags: %s", Version)
	}
}

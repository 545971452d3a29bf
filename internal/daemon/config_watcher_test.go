package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path, version, branch string) {
	t.Helper()
	content := fmt.Sprintf(`version: %q
site:
  url: https://example.com
  docs_route: /docs
store:
  endpoint: https://store.example.dev/api
  branch: %s
daemon:
  listen: "127.0.0.1:0"
  rebuild_interval: 1h
`, version, branch)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestWatcher(t *testing.T, configPath string) (*ConfigWatcher, *Daemon) {
	t.Helper()
	d := newTestDaemon(t, seededStore())
	cw, err := NewConfigWatcher(configPath, d)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cw.Stop(context.Background()) })
	return cw, d
}

func TestValidateConfigChange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docpress.yaml")
	writeConfigFile(t, configPath, "1.0", "main")
	cw, _ := newTestWatcher(t, configPath)

	t.Run("rejects version change", func(t *testing.T) {
		newCfg := testConfig(t.TempDir())
		newCfg.Version = "1.1"
		err := cw.checkReloadable(newCfg)
		require.Error(t, err)
		require.Contains(t, err.Error(), "requires daemon restart")
	})

	t.Run("rejects removal of the daemon section", func(t *testing.T) {
		newCfg := testConfig(t.TempDir())
		newCfg.Daemon = nil
		require.Error(t, cw.checkReloadable(newCfg))
	})

	t.Run("accepts listen address change with warning", func(t *testing.T) {
		newCfg := testConfig(t.TempDir())
		newCfg.Daemon.Listen = "127.0.0.1:9999"
		require.NoError(t, cw.checkReloadable(newCfg))
	})

	t.Run("accepts content changes", func(t *testing.T) {
		newCfg := testConfig(t.TempDir())
		newCfg.Store.Branch = "next"
		require.NoError(t, cw.checkReloadable(newCfg))
	})
}

func TestPerformReloadAppliesNewConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docpress.yaml")
	writeConfigFile(t, configPath, "1.0", "main")
	cw, d := newTestWatcher(t, configPath)

	writeConfigFile(t, configPath, "1.0", "next")

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the reload-triggered rebuild becomes a no-op

	require.NoError(t, cw.reload(ctx))
	require.Equal(t, "next", d.GetConfig().Store.Branch)
}

func TestPerformReloadRejectsVersionChange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docpress.yaml")
	writeConfigFile(t, configPath, "1.0", "main")
	cw, d := newTestWatcher(t, configPath)

	writeConfigFile(t, configPath, "1.1", "main")

	err := cw.reload(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires daemon restart")
	require.Equal(t, "main", d.GetConfig().Store.Branch)
}

func TestPerformReloadRejectsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docpress.yaml")
	writeConfigFile(t, configPath, "1.0", "main")
	cw, _ := newTestWatcher(t, configPath)

	require.NoError(t, os.WriteFile(configPath, []byte("version: \"1.0\"\nsite: {}\n"), 0o644))

	require.Error(t, cw.reload(context.Background()))
}

func TestNoteChangeCoalesces(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docpress.yaml")
	writeConfigFile(t, configPath, "1.0", "main")
	cw, _ := newTestWatcher(t, configPath)

	cw.noteChange()
	cw.noteChange()
	cw.noteChange()

	require.Len(t, cw.pending, 1)
}

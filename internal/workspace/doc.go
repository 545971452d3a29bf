// Package workspace manages working directories for content checkouts,
// supporting both ephemeral (timestamped) and persistent (fixed-path) modes.
//
// Ephemeral mode creates timestamped directories (e.g., docpress-20260825-091500)
// suitable for one-shot convert or audit runs, removed completely on Cleanup.
//
// Persistent mode uses a fixed directory path that survives across runs, so
// a synced content repository only pulls deltas on the next invocation.
package workspace

// Package manifest records one build run: inputs, counts, produced
// artifacts and final status. The manifest is the audit surface of a build;
// the daemon and history store both consume it.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of a build run.
type Status string

const (
	// StatusCompleted means every stage succeeded.
	StatusCompleted Status = "completed"
	// StatusDegraded means the build produced output with known gaps,
	// usually an empty route set after a resolution failure.
	StatusDegraded Status = "degraded"
	// StatusFailed means no usable output was produced.
	StatusFailed Status = "failed"
)

// BuildManifest is the complete record of a build's inputs, counts and outputs.
type BuildManifest struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Duration   int64      `json:"duration_ms"`
	Inputs     Inputs     `json:"inputs"`
	Counts     Counts     `json:"counts"`
	Outputs    []Artifact `json:"outputs"`
	Status     Status     `json:"status"`
	Issues     []string   `json:"issues,omitempty"`
}

// Inputs captures what the build read.
type Inputs struct {
	Endpoint    string `json:"endpoint"`
	Branch      string `json:"branch"`
	ContentRoot string `json:"content_root"`
	ConfigHash  string `json:"config_hash"`
}

// Counts captures how much the build processed.
type Counts struct {
	Routes      int `json:"routes"`
	Documents   int `json:"documents"`
	ListPages   int `json:"list_pages"`
	BrokenLinks int `json:"broken_links"`
}

// Artifact is one file the build wrote.
type Artifact struct {
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
	Bytes  int    `json:"bytes"`
}

// New starts a manifest for a build run with a fresh build ID.
func New(inputs Inputs) *BuildManifest {
	return &BuildManifest{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Inputs:    inputs,
		Outputs:   []Artifact{},
	}
}

// AddArtifact records a written output file and its content hash.
func (m *BuildManifest) AddArtifact(name string, data []byte) {
	sum := sha256.Sum256(data)
	m.Outputs = append(m.Outputs, Artifact{
		Name:   name,
		SHA256: fmt.Sprintf("%x", sum),
		Bytes:  len(data),
	})
}

// AddIssue records a degradation reason.
func (m *BuildManifest) AddIssue(issue string) {
	m.Issues = append(m.Issues, issue)
}

// Finish stamps the terminal status and duration.
func (m *BuildManifest) Finish(status Status) {
	m.FinishedAt = time.Now().UTC()
	m.Duration = m.FinishedAt.Sub(m.StartedAt).Milliseconds()
	m.Status = status
}

// ToJSON renders the manifest as indented JSON, the form written out as
// manifest.json.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// FromJSON parses a manifest produced by ToJSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	m := new(BuildManifest)
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// Hash computes a deterministic hash of the build's inputs, counts and
// artifact contents. Build ID, timestamps and duration stay out, so two
// builds over identical content hash identically.
func (m *BuildManifest) Hash() (string, error) {
	outputs := slices.Clone(m.Outputs)
	slices.SortFunc(outputs, func(a, b Artifact) int { return strings.Compare(a.Name, b.Name) })

	hashable := struct {
		Inputs  Inputs     `json:"inputs"`
		Counts  Counts     `json:"counts"`
		Outputs []Artifact `json:"outputs"`
	}{m.Inputs, m.Counts, outputs}

	data, err := json.Marshal(hashable)
	if err != nil {
		return "", fmt.Errorf("hash manifest: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

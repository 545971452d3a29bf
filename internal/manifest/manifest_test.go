package manifest

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleManifest() *BuildManifest {
	return &BuildManifest{
		ID:         "1f0c9f4e-58a5-4f4b-9d36-0c9a1f6f2a10",
		StartedAt:  time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 25, 12, 0, 42, 0, time.UTC),
		Duration:   42000,
		Inputs: Inputs{
			Endpoint:    "https://content.example.dev/api",
			Branch:      "main",
			ContentRoot: "docs",
			ConfigHash:  "config-hash-123",
		},
		Counts: Counts{
			Routes:    12,
			Documents: 12,
			ListPages: 3,
		},
		Outputs: []Artifact{
			{Name: "routes.json", SHA256: "aa11", Bytes: 512},
			{Name: "sitemap.xml", SHA256: "bb22", Bytes: 1024},
		},
		Status: StatusCompleted,
	}
}

func TestManifestRoundTrip(t *testing.T) {
	m := sampleManifest()

	first, err := m.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	restored, err := FromJSON(first)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	// Serializing the restored manifest must reproduce the original bytes,
	// otherwise some field does not survive the trip.
	second, err := restored.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON after round trip: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip drifted:\nfirst  %s\nsecond %s", first, second)
	}

	if restored.Status != StatusCompleted || restored.Counts.Routes != 12 {
		t.Errorf("restored fields wrong: %+v", restored)
	}
}

func TestManifestJSONFieldNames(t *testing.T) {
	jsonData, err := sampleManifest().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	for _, key := range []string{"id", "started_at", "finished_at", "duration_ms", "inputs", "counts", "outputs", "status"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected JSON key %q", key)
		}
	}
	if _, ok := raw["issues"]; ok {
		t.Error("issues should be omitted when empty")
	}
}

func TestNewAssignsBuildID(t *testing.T) {
	m := New(Inputs{Branch: "main"})

	if m.ID == "" {
		t.Fatal("expected generated build ID")
	}
	if len(strings.Split(m.ID, "-")) != 5 {
		t.Errorf("expected UUID-shaped ID, got %q", m.ID)
	}
	if m.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if m.Outputs == nil {
		t.Error("expected outputs initialized")
	}

	other := New(Inputs{Branch: "main"})
	if other.ID == m.ID {
		t.Error("expected unique build IDs")
	}
}

func TestAddArtifact(t *testing.T) {
	m := New(Inputs{})
	m.AddArtifact("routes.json", []byte(`{"routes":[]}`))

	if len(m.Outputs) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(m.Outputs))
	}
	a := m.Outputs[0]
	if a.Name != "routes.json" {
		t.Errorf("expected name routes.json, got %s", a.Name)
	}
	if a.Bytes != len(`{"routes":[]}`) {
		t.Errorf("expected %d bytes, got %d", len(`{"routes":[]}`), a.Bytes)
	}
	if len(a.SHA256) != 64 {
		t.Errorf("expected hex sha256, got %q", a.SHA256)
	}
}

func TestFinishStampsStatusAndDuration(t *testing.T) {
	m := New(Inputs{})
	m.StartedAt = time.Now().UTC().Add(-2 * time.Second)

	m.Finish(StatusDegraded)

	if m.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", m.Status)
	}
	if m.FinishedAt.IsZero() {
		t.Error("expected FinishedAt set")
	}
	if m.Duration < 2000 {
		t.Errorf("expected duration >= 2000ms, got %d", m.Duration)
	}
}

func TestHashDeterministic(t *testing.T) {
	m1 := sampleManifest()
	m2 := sampleManifest()
	m2.ID = "different-id"
	m2.StartedAt = m2.StartedAt.Add(time.Hour)
	m2.Duration = 1

	h1, err := m1.Hash()
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	h2, err := m2.Hash()
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if h1 != h2 {
		t.Error("hash should ignore build ID, timestamps and duration")
	}
}

func TestHashIgnoresArtifactOrder(t *testing.T) {
	m1 := sampleManifest()
	m2 := sampleManifest()
	m2.Outputs[0], m2.Outputs[1] = m2.Outputs[1], m2.Outputs[0]

	h1, _ := m1.Hash()
	h2, _ := m2.Hash()
	if h1 != h2 {
		t.Error("hash should be independent of artifact order")
	}
}

func TestHashSensitiveToContent(t *testing.T) {
	m1 := sampleManifest()
	m2 := sampleManifest()
	m2.Counts.Routes = 99

	h1, _ := m1.Hash()
	h2, _ := m2.Hash()
	if h1 == h2 {
		t.Error("hash should change when counts change")
	}
}

package variables

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRST = `Substitutions
=============

.. |product| replace:: Concordium Wallet
.. |version| replace:: 4.2.1
   .. |indented| replace:: still counts

not a directive line
.. |product-short| replace:: CW
`

func TestParse(t *testing.T) {
	s := Parse([]byte(sampleRST))
	require.Equal(t, 4, s.Len())
	require.Equal(t, []string{"product", "version", "indented", "product-short"}, s.Names())

	v, ok := s.Get("product")
	require.True(t, ok)
	require.Equal(t, "Concordium Wallet", v)
}

func TestParse_RedefinitionKeepsPositionTakesLastValue(t *testing.T) {
	s := Parse([]byte(".. |a| replace:: one\n.. |b| replace:: two\n.. |a| replace:: three\n"))
	require.Equal(t, []string{"a", "b"}, s.Names())
	v, _ := s.Get("a")
	require.Equal(t, "three", v)
}

func TestParseFile_MissingIsEmptyNotError(t *testing.T) {
	s, err := ParseFile(filepath.Join(t.TempDir(), "variables.rst"))
	require.NoError(t, err)
	require.Equal(t, 0, s.Len())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variables.rst")
	require.NoError(t, os.WriteFile(path, []byte(".. |x| replace:: y\n"), 0o644))

	s, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
}

func TestSubstitute(t *testing.T) {
	s := Parse([]byte(".. |product| replace:: Concordium Wallet\n.. |version| replace:: 4.2.1\n"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pipes", "Install |product| now.", "Install Concordium Wallet now."},
		{"braces", "Version {{version}} released.", "Version 4.2.1 released."},
		{"braces with spaces", "Version {{ version }} released.", "Version 4.2.1 released."},
		{"unknown name untouched", "Keep |unknown| and {{ unknown }}.", "Keep |unknown| and {{ unknown }}."},
		{"table rules untouched", "|---|---|", "|---|---|"},
		{"mixed", "|product| {{version}}", "Concordium Wallet 4.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Substitute(tt.in))
		})
	}
}

func TestSubstitute_EmptySetPassthrough(t *testing.T) {
	require.Equal(t, "|x| {{y}}", New().Substitute("|x| {{y}}"))
}

func TestOverlay(t *testing.T) {
	global := Parse([]byte(".. |a| replace:: global-a\n.. |b| replace:: global-b\n"))
	local := New()
	local.Put("b", "local-b")
	local.Put("c", "local-c")

	merged := global.Overlay(local)
	require.Equal(t, []string{"a", "b", "c"}, merged.Names())

	v, _ := merged.Get("b")
	require.Equal(t, "local-b", v)

	// The global set stays untouched.
	v, _ = global.Get("b")
	require.Equal(t, "global-b", v)
}

func TestFromFields(t *testing.T) {
	s := FromFields(map[string]any{
		"title": "Doc",
		"substitutions": map[string]any{
			"beta":  "Beta Channel",
			"alpha": "Alpha Channel",
			"skip":  7,
		},
	})
	require.Equal(t, []string{"alpha", "beta"}, s.Names())
}

func TestMarshalJSON_DefinitionOrder(t *testing.T) {
	s := Parse([]byte(".. |zeta| replace:: z\n.. |alpha| replace:: a\n"))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.Equal(t, `{"zeta":"z","alpha":"a"}`, string(out))

	var round map[string]string
	require.NoError(t, json.Unmarshal(out, &round))
	require.Equal(t, map[string]string{"zeta": "z", "alpha": "a"}, round)
}

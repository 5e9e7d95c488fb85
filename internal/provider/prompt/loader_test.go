package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsIncludeMetadataPrompt(t *testing.T) {
	prompts, err := Defaults()
	require.NoError(t, err)

	for _, slug := range []string{"metadata", "title", "description"} {
		p, ok := prompts[slug]
		require.True(t, ok, "missing default prompt %q", slug)
		require.NoError(t, p.Validate())
	}
}

func TestPromptRender(t *testing.T) {
	prompts, err := Defaults()
	require.NoError(t, err)

	system, user, err := prompts["metadata"].Render(map[string]string{
		"url":          "https://example.com/post",
		"language":     "en",
		"content_type": "article",
		"heading":      "How Buckets Work",
		"keywords":     "bucket, tokens",
		"text":         "a short body",
	})
	require.NoError(t, err)
	require.Contains(t, system, "JSON object")
	require.Contains(t, user, "https://example.com/post")
	require.Contains(t, user, "How Buckets Work")
	require.Contains(t, user, "a short body")
}

func TestLoadMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	override := `
prompts:
  - slug: metadata
    system: custom system
    user: custom user {{.text}}
  - slug: extra
    user: another {{.text}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(override), 0o644))

	prompts, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "custom system", prompts["metadata"].System)
	require.Contains(t, prompts, "extra")
	// Untouched defaults survive the merge.
	require.Contains(t, prompts, "title")
}

func TestLoadMissingDirFails(t *testing.T) {
	_, err := Load("/nonexistent/prompts")
	require.Error(t, err)
}

func TestLoadRejectsInvalidPrompt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("prompts:\n  - slug: broken\n"), 0o644))

	_, err := Load(dir)
	require.ErrorContains(t, err, "no user template")
}

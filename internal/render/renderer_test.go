package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/helpers"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func writeSource(t *testing.T, root, rel, content string) *site.Entry {
	t.Helper()
	dest := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o750))
	require.NoError(t, os.WriteFile(dest, []byte(content), 0o644))
	return site.NewEntry(root, rel)
}

func TestRenderMarkdownWithoutLayout(t *testing.T) {
	src := t.TempDir()
	entry := writeSource(t, src, "index.md", "# Hello\n\nbody text\n")

	r := NewRenderer(src, helpers.NewRegistry())
	out, err := r.Render(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>Hello</h1>")
	assert.Contains(t, string(out), "body text")
}

func TestRenderCopiesNonMarkdown(t *testing.T) {
	src := t.TempDir()
	entry := writeSource(t, src, "css/style.css", "body { color: red }")

	r := NewRenderer(src, helpers.NewRegistry())
	out, err := r.Render(entry)
	require.NoError(t, err)
	assert.Equal(t, "body { color: red }", string(out))
}

func TestRenderAppliesLayoutWithHelpers(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, LayoutFile,
		`<html><head><title>{{.Title}} - {{sitename}}</title></head><body>{{.Content}}</body></html>`)
	entry := writeSource(t, src, "getting-started.md", "# Start\n")

	reg := helpers.NewRegistry()
	reg.Register("sitename", func(...any) (any, error) { return "Example", nil })

	r := NewRenderer(src, reg)
	out, err := r.Render(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<title>Getting Started - Example</title>")
	assert.Contains(t, string(out), "<h1>Start</h1>")
}

func TestRenderLayoutHelperErrorSurfaces(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, LayoutFile, `{{oops}}{{.Content}}`)
	entry := writeSource(t, src, "page.md", "# Page\n")

	reg := helpers.NewRegistry()
	reg.Register("oops", func(...any) (any, error) {
		return nil, assert.AnError
	})

	r := NewRenderer(src, reg)
	_, err := r.Render(entry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute layout")
}

func TestRenderMissingSource(t *testing.T) {
	src := t.TempDir()
	entry := site.NewEntry(src, "ghost.md")

	r := NewRenderer(src, helpers.NewRegistry())
	_, err := r.Render(entry)
	require.Error(t, err)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Getting Started", pageTitle("docs/getting-started.md"))
	assert.Equal(t, "Index", pageTitle("index.md"))
	assert.Equal(t, "Release Notes", pageTitle("release_notes.markdown"))
}

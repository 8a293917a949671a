package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	cases := []struct {
		rel  string
		want string
	}{
		{"index.md", "index.html"},
		{"docs/guide.markdown", "docs/guide.html"},
		{"about.html", "about.html"},
		{"css/style.css", "css/style.css"},
		{"layout.tmpl", ""},
		{"UPPER.MD", "UPPER.html"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OutputPath(tc.rel), "rel=%s", tc.rel)
	}
}

func TestNewEntryArtifactPresence(t *testing.T) {
	e := NewEntry("/src", "index.md")
	require.NotNil(t, e.Artifact())
	assert.Equal(t, "index.html", e.Artifact().Rel())
	assert.Same(t, e, e.Artifact().Entry())

	tmpl := NewEntry("/src", "layout.tmpl")
	assert.Nil(t, tmpl.Artifact())
}

// fakeRules lets entry validation be driven without a project.
type fakeRules struct {
	ignored map[string]bool
	output  string
}

func (r fakeRules) Ignored(rel string) bool { return r.ignored[rel] }
func (r fakeRules) InOutputRoot(abs string) bool {
	return r.output != "" && Contains(r.output, abs)
}

func TestEntryValid(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "page.md"), []byte("# hi"), 0o644))

	e := NewEntry(src, "page.md")
	assert.True(t, e.Valid(fakeRules{}))

	// Newly ignored entries become invalid without touching the file.
	assert.False(t, e.Valid(fakeRules{ignored: map[string]bool{"page.md": true}}))

	// Deleting the file invalidates the entry.
	require.NoError(t, os.Remove(filepath.Join(src, "page.md")))
	assert.False(t, e.Valid(fakeRules{}))
}

func TestEntryValidOutputContainment(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(src, "out")
	require.NoError(t, os.MkdirAll(out, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.html"), []byte("x"), 0o644))

	e := NewEntry(src, "out/stale.html")
	assert.False(t, e.Valid(fakeRules{output: out}))
}

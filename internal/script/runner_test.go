package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/helpers"
)

type fakeMutator struct {
	ignores []string
	reg     *helpers.Registry
	attrs   map[string]any
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{reg: helpers.NewRegistry(), attrs: make(map[string]any)}
}

func (m *fakeMutator) Ignore(pattern string) { m.ignores = append(m.ignores, pattern) }

func (m *fakeMutator) RegisterHelper(name string, fn helpers.Helper) { m.reg.Register(name, fn) }

func (m *fakeMutator) SetAttr(name string, value any) error {
	if name == "assume_directory_index" || name == "assume_content_negotiation" {
		m.attrs[name] = value
		return nil
	}
	return errors.New("unrecognized attribute " + name)
}

func writeScript(t *testing.T, content string) *Runner {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ControlFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	r := NewRunner(path)
	t.Cleanup(r.Close)
	return r
}

func TestRunMissingControlFile(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), ControlFile))
	defer r.Close()
	require.NoError(t, r.Run(newFakeMutator()))
}

func TestRunAppliesMutations(t *testing.T) {
	r := writeScript(t, `
site.ignore("*.draft")
site.set("assume_directory_index", true)
site.helper("shout", function(s) return string.upper(s) end)
`)
	m := newFakeMutator()
	require.NoError(t, r.Run(m))

	assert.Equal(t, []string{"*.draft"}, m.ignores)
	assert.Equal(t, true, m.attrs["assume_directory_index"])

	got, err := m.reg.Call("shout", "quiet")
	require.NoError(t, err)
	assert.Equal(t, "QUIET", got)
}

func TestRunFaultKeepsPriorMutations(t *testing.T) {
	r := writeScript(t, `
site.ignore("applied-before-fault")
error("deliberate fault")
site.ignore("never-reached")
`)
	m := newFakeMutator()
	err := r.Run(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate fault")
	assert.Equal(t, []string{"applied-before-fault"}, m.ignores)
}

func TestRunUnknownAttrAborts(t *testing.T) {
	r := writeScript(t, `
site.ignore("first")
site.set("no_such_attr", 1)
`)
	m := newFakeMutator()
	err := r.Run(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_attr")
	assert.Equal(t, []string{"first"}, m.ignores)
}

func TestRerunOverwritesHelpers(t *testing.T) {
	r := writeScript(t, `site.helper("version", function() return 1 end)`)
	m := newFakeMutator()
	require.NoError(t, r.Run(m))
	require.NoError(t, r.Run(m))

	got, err := m.reg.Call("version")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
	assert.Equal(t, 1, m.reg.Len())
}

func TestSandboxBlocksOsAndIo(t *testing.T) {
	r := writeScript(t, `os.getenv("HOME")`)
	err := r.Run(newFakeMutator())
	require.Error(t, err)
}

func TestHelperTableRoundTrip(t *testing.T) {
	r := writeScript(t, `
site.helper("wrap", function(v) return { value = v, list = { 1, 2, 3 } } end)
`)
	m := newFakeMutator()
	require.NoError(t, r.Run(m))

	got, err := m.reg.Call("wrap", "x")
	require.NoError(t, err)
	table, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", table["value"])
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, table["list"])
}

package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterOverwritesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Register("greet", func(...any) (any, error) { return "hello", nil })

	// A second holder of the same registry observes re-registration.
	holder := r
	r.Register("greet", func(...any) (any, error) { return "hi", nil })

	got, err := holder.Call("greet")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, 1, r.Len())
}

func TestCallUnregistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCallPassesArgsAndErrors(t *testing.T) {
	r := NewRegistry()
	sentinel := errors.New("boom")
	r.Register("fail", func(...any) (any, error) { return nil, sentinel })
	r.Register("join", func(args ...any) (any, error) {
		out := ""
		for _, a := range args {
			out += a.(string)
		}
		return out, nil
	})

	_, err := r.Call("fail")
	assert.ErrorIs(t, err, sentinel)

	got, err := r.Call("join", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestNamesSortedAndFuncMapSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("b", func(...any) (any, error) { return nil, nil })
	r.Register("a", func(...any) (any, error) { return nil, nil })

	assert.Equal(t, []string{"a", "b"}, r.Names())

	fm := r.FuncMap()
	assert.Len(t, fm, 2)
	r.Register("c", func(...any) (any, error) { return nil, nil })
	// The snapshot does not grow; the next FuncMap call does.
	assert.Len(t, fm, 2)
	assert.Len(t, r.FuncMap(), 3)
}

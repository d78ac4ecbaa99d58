package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRuntime struct {
	manifest *Manifest
}

func (r *staticRuntime) Manifest() *Manifest {
	return r.manifest
}

func newStaticRuntime(id string) *staticRuntime {
	return &staticRuntime{manifest: &Manifest{ID: id, Name: id, Version: "1.0.0"}}
}

func TestRuntimeRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRuntimeRegistry()
	runtime := newStaticRuntime("notes")

	require.NoError(t, registry.Register("notes", runtime))

	got, err := registry.Get("notes")
	require.NoError(t, err)
	assert.Same(t, Runtime(runtime), got)
	assert.True(t, registry.Has("notes"))
	assert.Equal(t, 1, registry.Count())
}

func TestRuntimeRegistry_RegisterNil(t *testing.T) {
	registry := NewRuntimeRegistry()

	err := registry.Register("notes", nil)
	require.Error(t, err)
	assert.False(t, registry.Has("notes"))
}

func TestRuntimeRegistry_GetMissing(t *testing.T) {
	registry := NewRuntimeRegistry()

	_, err := registry.Get("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntimeNotFound)
}

func TestRuntimeRegistry_LastWriteWins(t *testing.T) {
	registry := NewRuntimeRegistry()
	first := newStaticRuntime("notes")
	second := newStaticRuntime("notes")

	require.NoError(t, registry.Register("notes", first))
	require.NoError(t, registry.Register("notes", second))

	got, err := registry.Get("notes")
	require.NoError(t, err)
	assert.Same(t, Runtime(second), got)
	assert.Equal(t, 1, registry.Count())
}

func TestRuntimeRegistry_IDsSorted(t *testing.T) {
	registry := NewRuntimeRegistry()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, registry.Register(id, newStaticRuntime(id)))
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, registry.IDs())
	assert.Len(t, registry.List(), 3)
}

func TestRuntimeRegistry_Clear(t *testing.T) {
	registry := NewRuntimeRegistry()
	require.NoError(t, registry.Register("notes", newStaticRuntime("notes")))

	registry.Clear()

	assert.Equal(t, 0, registry.Count())
	assert.False(t, registry.Has("notes"))
}

package plugins

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugboard/plugboard/pkg/config"
)

func TestFactoryRegistry_FallbackWhenUnregistered(t *testing.T) {
	registry := NewFactoryRegistry(DefaultFactory)

	factory := registry.For("anything")
	require.NotNil(t, factory)
	assert.False(t, registry.Has("anything"))

	runtime, err := factory(&config.Config{}, &Manifest{ID: "anything", Name: "a", Version: "1.0.0"})
	require.NoError(t, err)
	assert.IsType(t, &BasicRuntime{}, runtime)
}

func TestFactoryRegistry_DedicatedFactoryWins(t *testing.T) {
	registry := NewFactoryRegistry(DefaultFactory)

	called := false
	registry.Register("notes", func(cfg *config.Config, m *Manifest) (Runtime, error) {
		called = true
		return newStaticRuntime(m.ID), nil
	})

	assert.True(t, registry.Has("notes"))

	runtime, err := registry.For("notes")(&config.Config{}, &Manifest{ID: "notes"})
	require.NoError(t, err)
	assert.True(t, called)
	assert.IsType(t, &staticRuntime{}, runtime)
}

func TestFactoryRegistry_NilWithoutFallback(t *testing.T) {
	registry := NewFactoryRegistry(nil)

	assert.Nil(t, registry.For("notes"))
}

func TestFactoryRegistry_RegisterReplaces(t *testing.T) {
	registry := NewFactoryRegistry(nil)

	registry.Register("notes", func(cfg *config.Config, m *Manifest) (Runtime, error) {
		return nil, fmt.Errorf("old factory")
	})
	registry.Register("notes", func(cfg *config.Config, m *Manifest) (Runtime, error) {
		return newStaticRuntime(m.ID), nil
	})

	runtime, err := registry.For("notes")(&config.Config{}, &Manifest{ID: "notes"})
	require.NoError(t, err)
	assert.Equal(t, "notes", runtime.Manifest().ID)
}

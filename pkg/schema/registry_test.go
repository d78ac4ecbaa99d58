package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugboard/plugboard/pkg/plugins"
)

type noopActivator struct{}

func (noopActivator) Create(ctx context.Context, manifest *plugins.Manifest, desc plugins.SchemaDescriptor) error {
	return nil
}

func TestRegistry_ForType(t *testing.T) {
	registry := NewRegistry()
	registry.Register(TypeSQL, noopActivator{})
	registry.Register(TypeRedis, noopActivator{})

	activator, err := registry.ForType(TypeSQL)
	require.NoError(t, err)
	assert.NotNil(t, activator)

	assert.Equal(t, []string{TypeRedis, TypeSQL}, registry.Types())
}

func TestRegistry_UnknownType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.ForType("graph")
	require.Error(t, err)
	assert.ErrorIs(t, err, plugins.ErrUnknownSchemaType)
}

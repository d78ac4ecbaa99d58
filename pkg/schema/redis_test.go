package schema

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugboard/plugboard/pkg/plugins"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisActivator_Create(t *testing.T) {
	mr, client := newTestRedis(t)

	activator := NewRedisActivator(client, testLogger())
	manifest := &plugins.Manifest{ID: "notes", Name: "Notes", Version: "1.0.0"}

	payload := `
type: redis
keys:
  - key: notes:next-id
    value: "0"
hashes:
  - key: notes:meta
    fields:
      schema_version: "1"
`
	err := activator.Create(context.Background(), manifest, plugins.SchemaDescriptor{
		Type:    TypeRedis,
		Name:    "counters.yaml",
		Payload: []byte(payload),
	})

	require.NoError(t, err)
	got, err := mr.Get("notes:next-id")
	require.NoError(t, err)
	assert.Equal(t, "0", got)
	assert.Equal(t, "1", mr.HGet("notes:meta", "schema_version"))
}

func TestRedisActivator_RerunPreservesLiveData(t *testing.T) {
	mr, client := newTestRedis(t)

	activator := NewRedisActivator(client, testLogger())
	manifest := &plugins.Manifest{ID: "notes", Name: "Notes", Version: "1.0.0"}

	desc := plugins.SchemaDescriptor{
		Type:    TypeRedis,
		Name:    "counters.yaml",
		Payload: []byte("type: redis\nkeys:\n  - key: notes:next-id\n    value: \"0\"\n"),
	}

	require.NoError(t, activator.Create(context.Background(), manifest, desc))
	require.NoError(t, mr.Set("notes:next-id", "42"))

	// Re-activation uses SetNX, so the live counter survives.
	require.NoError(t, activator.Create(context.Background(), manifest, desc))
	got, err := mr.Get("notes:next-id")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestRedisActivator_EmptyKeyName(t *testing.T) {
	_, client := newTestRedis(t)

	activator := NewRedisActivator(client, testLogger())
	manifest := &plugins.Manifest{ID: "notes", Name: "Notes", Version: "1.0.0"}

	err := activator.Create(context.Background(), manifest, plugins.SchemaDescriptor{
		Type:    TypeRedis,
		Name:    "bad.yaml",
		Payload: []byte("type: redis\nkeys:\n  - value: \"0\"\n"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares a key with no name")
}

func TestRedisActivator_ParseFailure(t *testing.T) {
	_, client := newTestRedis(t)

	activator := NewRedisActivator(client, testLogger())
	manifest := &plugins.Manifest{ID: "notes", Name: "Notes", Version: "1.0.0"}

	err := activator.Create(context.Background(), manifest, plugins.SchemaDescriptor{
		Type:    TypeRedis,
		Name:    "bad.yaml",
		Payload: []byte("keys: [unclosed"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse redis schema")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugboard/plugboard/pkg/observability"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "./plugins", cfg.Plugins.Root)
	assert.Empty(t, cfg.Plugins.Autoload)
	assert.Equal(t, 60*time.Second, cfg.Plugins.LoadTimeout)
	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PLUGBOARD_PORT", "9000")
	t.Setenv("PLUGBOARD_PLUGIN_ROOT", "/srv/plugins")
	t.Setenv("PLUGBOARD_PLUGINS", "notes, tasks,,wiki ")
	t.Setenv("PLUGBOARD_PLUGIN_LOAD_TIMEOUT", "90s")
	t.Setenv("PLUGBOARD_DB_DRIVER", "postgres")
	t.Setenv("PLUGBOARD_DB_DSN", "postgres://localhost/plugboard")
	t.Setenv("PLUGBOARD_REDIS_ENABLED", "true")
	t.Setenv("PLUGBOARD_REDIS_ADDR", "redis:6379")
	t.Setenv("PLUGBOARD_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/srv/plugins", cfg.Plugins.Root)
	assert.Equal(t, []string{"notes", "tasks", "wiki"}, cfg.Plugins.Autoload)
	assert.Equal(t, 90*time.Second, cfg.Plugins.LoadTimeout)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	t.Setenv("PLUGBOARD_PORT", "8080")
	t.Setenv("PLUGBOARD_HEALTH_PORT", "8080")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		return *cfg
	}

	t.Run("missing plugin root", func(t *testing.T) {
		cfg := base()
		cfg.Plugins.Root = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("redis enabled without addr", func(t *testing.T) {
		cfg := base()
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("otel enabled without endpoint", func(t *testing.T) {
		cfg := base()
		cfg.Observability.OTelEnabled = true
		cfg.Observability.OTelEndpoint = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})
}

func TestClone_IsolatesAutoload(t *testing.T) {
	cfg := Config{}
	cfg.Plugins.Autoload = []string{"notes", "tasks"}

	clone := cfg.Clone()
	clone.Plugins.Autoload[0] = "changed"

	assert.Equal(t, "notes", cfg.Plugins.Autoload[0])
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, observability.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, observability.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, observability.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, observability.InfoLevel, parseLogLevel("nonsense"))
}

// Package config loads and validates application configuration from
// environment variables.
//
// All variables use the PLUGBOARD_ prefix. The important ones:
//
//	PLUGBOARD_PORT                HTTP port (default 8080)
//	PLUGBOARD_HEALTH_PORT         health/metrics port (default 9090)
//	PLUGBOARD_PLUGIN_ROOT         plugin directory root (default ./plugins)
//	PLUGBOARD_PLUGINS             comma-separated plugin ids to load at startup
//	PLUGBOARD_DB_DRIVER           sqlite3 or postgres (default sqlite3)
//	PLUGBOARD_DB_DSN              database DSN
//	PLUGBOARD_REDIS_ENABLED       enable the redis schema backend
//	PLUGBOARD_LOG_LEVEL           debug, info, warn, error (default info)
//	PLUGBOARD_OTEL_ENABLED        enable OpenTelemetry export
//
// Config.Clone produces a deep copy; the plugin loader captures its
// configuration that way so the snapshot it hands to runtime factories is
// isolated from later mutation.
package config

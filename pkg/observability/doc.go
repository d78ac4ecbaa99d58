// Package observability provides structured logging, Prometheus metrics,
// health probes, OpenTelemetry export, and graceful shutdown plumbing.
//
// Logger wraps log/slog with a JSON handler and contextual fields.
// Metrics registers plugin-load, schema-activation, and HTTP metrics on a
// private Prometheus registry. HealthChecker probes the database and Redis
// for the readiness endpoint. ShutdownManager drains the HTTP server and
// runs registered shutdown funcs on SIGINT/SIGTERM.
package observability

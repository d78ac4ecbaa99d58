package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/plugboard/plugboard/pkg/api"
	"github.com/plugboard/plugboard/pkg/config"
	"github.com/plugboard/plugboard/pkg/httputil"
	"github.com/plugboard/plugboard/pkg/observability"
	"github.com/plugboard/plugboard/pkg/plugins"
	"github.com/plugboard/plugboard/pkg/routes"
	"github.com/plugboard/plugboard/pkg/schema"
	"github.com/plugboard/plugboard/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	log := newLogrusLogger(cfg.Observability.LogLevel)

	ctx := context.Background()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	db, err := storage.Open(cfg.Storage)
	if err != nil {
		logger.WithError(err).Error("Failed to open database")
		os.Exit(1)
	}
	logger.Infof("Database ready (%s)", cfg.Storage.Driver)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Error("Failed to connect to Redis")
			os.Exit(1)
		}
		logger.Infof("Redis ready (%s)", cfg.Redis.Addr)
	}

	// Plugin collaborators.
	provider, err := plugins.NewFilesystemProvider(cfg.Plugins.Root, log)
	if err != nil {
		logger.WithError(err).Error("Failed to create manifest provider")
		os.Exit(1)
	}

	activators := schema.NewRegistry()
	activators.Register(schema.TypeSQL, schema.NewSQLActivator(db, log))
	if redisClient != nil {
		activators.Register(schema.TypeRedis, schema.NewRedisActivator(redisClient, log))
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	router := mux.NewRouter()
	routeRegistry := routes.NewRegistry(router.PathPrefix("/plugins").Subrouter())
	runtimes := plugins.NewRuntimeRegistry()
	factories := plugins.NewFactoryRegistry(plugins.DefaultFactory)

	loader := plugins.NewLoader(plugins.LoaderOptions{
		Config:     *cfg,
		Manifests:  provider,
		Schemas:    schema.NewFilesystemDiscoverer(cfg.Plugins.Root, log),
		Activators: activators,
		Factories:  factories,
		Runtimes:   runtimes,
		Routes:     routeRegistry,
		Logger:     log,
		Metrics:    metrics,
	})

	// Load the configured top-level plugins sequentially; dependencies come
	// in transitively. Any failure aborts startup.
	for _, id := range cfg.Plugins.Autoload {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Plugins.LoadTimeout)
		err := loader.Load(loadCtx, plugins.PluginRef{ID: id})
		cancel()
		if err != nil {
			logger.WithError(err).Errorf("Failed to load plugin %s", id)
			os.Exit(1)
		}
	}
	logger.Infof("Loaded %d plugins", runtimes.Count())

	api.NewServer(router, loader, runtimes, routeRegistry, log)

	handler := httputil.Chain(router,
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
	)
	if metrics != nil {
		handler = metrics.Middleware(handler)
	}
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "plugboard")
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for k8s probes.
	healthChecker := observability.NewHealthChecker(db, redisClient)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", healthChecker.Liveness)
	healthMux.HandleFunc("/readyz", healthChecker.Readiness)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	// Periodic registry stats keep the loaded gauge honest even when loads
	// only happen at startup.
	statsCron := cron.New()
	statsCron.AddFunc("@every 1m", func() {
		if metrics != nil {
			metrics.PluginsLoaded.Set(float64(runtimes.Count()))
		}
		logger.Debugf("Registry stats: %d runtimes, namespaces: %v",
			runtimes.Count(), routeRegistry.IDs())
	})
	statsCron.Start()

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, server, healthServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		statsCron.Stop()
		return nil
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return provider.Close()
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return redisClient.Close()
		})
	}
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return db.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, otelProviders)
	})

	go func() {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	go func() {
		logger.Infof("Plugboard listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
}

// newLogrusLogger builds the logrus logger the plugin packages use, at the
// same level as the structured logger.
func newLogrusLogger(level observability.LogLevel) *logrus.Logger {
	log := logrus.New()
	switch level {
	case observability.DebugLevel:
		log.SetLevel(logrus.DebugLevel)
	case observability.WarnLevel:
		log.SetLevel(logrus.WarnLevel)
	case observability.ErrorLevel:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

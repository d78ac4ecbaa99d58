package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/plugboard/plugboard/pkg/plugins"
	"github.com/plugboard/plugboard/pkg/routes"
)

// Server exposes the control-plane API over the plugin loader. Plugin route
// namespaces are mounted on the same root router by the route registry, so
// one listener serves both surfaces:
//
//	/api/v1/plugins/...   control plane (this package)
//	/plugins/<id>/...     per-plugin namespaces
type Server struct {
	router   *mux.Router
	loader   *plugins.Loader
	runtimes *plugins.RuntimeRegistry
	routes   *routes.Registry
	log      *logrus.Logger
}

// NewServer registers the control-plane routes on the given root router.
func NewServer(router *mux.Router, loader *plugins.Loader, runtimes *plugins.RuntimeRegistry, routeRegistry *routes.Registry, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		router:   router,
		loader:   loader,
		runtimes: runtimes,
		routes:   routeRegistry,
		log:      log,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the control-plane API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/v1/plugins", s.listPlugins).Methods("GET")
	s.router.HandleFunc("/api/v1/plugins/{id}", s.getPlugin).Methods("GET")
	s.router.HandleFunc("/api/v1/plugins/{id}/load", s.loadPlugin).Methods("POST")
	s.router.HandleFunc("/api/v1/plugins/{id}/plan", s.planPlugin).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router returns the underlying router for middleware wrapping.
func (s *Server) Router() *mux.Router {
	return s.router
}

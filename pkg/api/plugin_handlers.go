package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plugboard/plugboard/pkg/httputil"
	"github.com/plugboard/plugboard/pkg/plugins"
)

// pluginInfo is the control-plane view of a loaded plugin.
type pluginInfo struct {
	Manifest  *plugins.Manifest `json:"manifest"`
	Namespace string            `json:"namespace"`
}

// listPlugins returns every loaded plugin.
func (s *Server) listPlugins(w http.ResponseWriter, r *http.Request) {
	ids := s.runtimes.IDs()

	infos := make([]pluginInfo, 0, len(ids))
	for _, id := range ids {
		runtime, err := s.runtimes.Get(id)
		if err != nil {
			continue
		}
		infos = append(infos, pluginInfo{
			Manifest:  runtime.Manifest(),
			Namespace: "/plugins/" + id,
		})
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"plugins": infos,
		"count":   len(infos),
	})
}

// getPlugin returns one loaded plugin by id.
func (s *Server) getPlugin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	runtime, err := s.runtimes.Get(id)
	if err != nil {
		httputil.WriteNotFoundError(w, fmt.Sprintf("plugin not loaded: %s", id))
		return
	}

	httputil.WriteSuccess(w, pluginInfo{
		Manifest:  runtime.Manifest(),
		Namespace: "/plugins/" + id,
	})
}

// loadPlugin triggers a load for the id. Loading an already-claimed id is a
// no-op and reports the current state.
func (s *Server) loadPlugin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	alreadyClaimed := s.loader.Claimed(id)

	if err := s.loader.Load(r.Context(), plugins.PluginRef{ID: id}); err != nil {
		s.writeLoadError(w, err)
		return
	}

	status := "loaded"
	if alreadyClaimed {
		if s.runtimes.Has(id) {
			status = "already_loaded"
		} else {
			// Claimed by an earlier failed attempt; claims are not rolled
			// back, so this id cannot be retried in this process run.
			status = "claimed_not_loaded"
		}
	}

	httputil.WriteSuccess(w, map[string]string{
		"id":     id,
		"status": status,
	})
}

// planPlugin returns the dry-run load plan for the id without loading
// anything.
func (s *Server) planPlugin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	plan, err := s.loader.Plan(r.Context(), plugins.PluginRef{ID: id})
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	httputil.WriteSuccess(w, plan)
}

// writeLoadError maps a load failure onto an HTTP response carrying the
// failing plugin id and stage.
func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, plugins.ErrManifestNotFound) {
		status = http.StatusNotFound
	}

	var loadErr *plugins.LoadError
	if errors.As(err, &loadErr) {
		httputil.WriteDetailedError(w, status, err, map[string]string{
			"plugin_id": loadErr.PluginID,
			"stage":     string(loadErr.Stage),
		})
		return
	}

	httputil.WriteError(w, status, err)
}

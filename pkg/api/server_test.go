package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugboard/plugboard/pkg/config"
	"github.com/plugboard/plugboard/pkg/plugins"
	"github.com/plugboard/plugboard/pkg/routes"
	"github.com/plugboard/plugboard/pkg/schema"
)

// testServer wires a full loader over a temp plugin root, so handler tests
// exercise the real pipeline end to end.
type testServer struct {
	root     string
	router   *mux.Router
	runtimes *plugins.RuntimeRegistry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	root := t.TempDir()

	provider, err := plugins.NewFilesystemProvider(root, log)
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })

	router := mux.NewRouter()
	routeRegistry := routes.NewRegistry(router.PathPrefix("/plugins").Subrouter())
	runtimes := plugins.NewRuntimeRegistry()

	loader := plugins.NewLoader(plugins.LoaderOptions{
		Config:     config.Config{},
		Manifests:  provider,
		Schemas:    schema.NewFilesystemDiscoverer(root, log),
		Activators: schema.NewRegistry(),
		Factories:  plugins.NewFactoryRegistry(plugins.DefaultFactory),
		Runtimes:   runtimes,
		Routes:     routeRegistry,
		Logger:     log,
	})

	NewServer(router, loader, runtimes, routeRegistry, log)

	return &testServer{root: root, router: router, runtimes: runtimes}
}

func (s *testServer) addPlugin(t *testing.T, id string, deps ...string) {
	t.Helper()

	manifest := &plugins.Manifest{ID: id, Name: id, Version: "1.0.0"}
	for _, dep := range deps {
		manifest.Dependencies = append(manifest.Dependencies, plugins.PluginRef{ID: dep})
	}

	dir := filepath.Join(s.root, id)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, plugins.SaveManifest(manifest, filepath.Join(dir, plugins.ManifestFileName)))
}

func (s *testServer) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestListPlugins_Empty(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/plugins")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Plugins []pluginInfo `json:"plugins"`
		Count   int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Plugins)
}

func TestLoadPlugin_WithDependencies(t *testing.T) {
	s := newTestServer(t)
	s.addPlugin(t, "auth")
	s.addPlugin(t, "notes", "auth")

	rec := s.do(http.MethodPost, "/api/v1/plugins/notes/load")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"loaded"`)

	// The dependency came in transitively.
	assert.True(t, s.runtimes.Has("auth"))

	rec = s.do(http.MethodGet, "/api/v1/plugins")
	var resp struct {
		Plugins []pluginInfo `json:"plugins"`
		Count   int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	// The default runtime's namespace routes are live on the same router.
	rec = s.do(http.MethodGet, "/plugins/notes/manifest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"notes"`)
}

func TestGetPlugin(t *testing.T) {
	s := newTestServer(t)
	s.addPlugin(t, "notes")

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/plugins/notes/load").Code)

	rec := s.do(http.MethodGet, "/api/v1/plugins/notes")
	require.Equal(t, http.StatusOK, rec.Code)

	var info pluginInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "notes", info.Manifest.ID)
	assert.Equal(t, "/plugins/notes", info.Namespace)
}

func TestGetPlugin_NotLoaded(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/plugins/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadPlugin_AlreadyLoaded(t *testing.T) {
	s := newTestServer(t)
	s.addPlugin(t, "notes")

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/plugins/notes/load").Code)

	rec := s.do(http.MethodPost, "/api/v1/plugins/notes/load")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"already_loaded"`)
}

func TestLoadPlugin_MissingManifest(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/plugins/ghost/load")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ghost", resp.Details["plugin_id"])
	assert.Equal(t, "manifest", resp.Details["stage"])
}

func TestLoadPlugin_ClaimedNotLoaded(t *testing.T) {
	s := newTestServer(t)

	// First attempt fails and leaves the claim in place.
	require.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/plugins/ghost/load").Code)

	// Re-loading the claimed id is a no-op reporting its stuck state.
	rec := s.do(http.MethodPost, "/api/v1/plugins/ghost/load")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"claimed_not_loaded"`)
	assert.False(t, s.runtimes.Has("ghost"))
}

func TestPlanPlugin(t *testing.T) {
	s := newTestServer(t)
	s.addPlugin(t, "auth")
	s.addPlugin(t, "notes", "auth")

	rec := s.do(http.MethodGet, "/api/v1/plugins/notes/plan")
	require.Equal(t, http.StatusOK, rec.Code)

	var plan plugins.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "notes", plan.Target)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "auth", plan.Steps[0].ID)
	assert.Equal(t, "notes", plan.Steps[1].ID)

	// Planning loads nothing.
	assert.False(t, s.runtimes.Has("notes"))
}

func TestLoadPlugin_DependencyFailureAttribution(t *testing.T) {
	s := newTestServer(t)
	s.addPlugin(t, "notes", "missing-dep")

	rec := s.do(http.MethodPost, "/api/v1/plugins/notes/load")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "missing-dep", resp.Details["plugin_id"])
	assert.Equal(t, "manifest", resp.Details["stage"])
	assert.False(t, s.runtimes.Has("notes"))
}

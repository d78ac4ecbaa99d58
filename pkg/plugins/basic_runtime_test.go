package plugins

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicRuntime_Routes(t *testing.T) {
	manifest := &Manifest{ID: "notes", Name: "Notes", Version: "1.0.0"}
	runtime := NewBasicRuntime(manifest)

	assert.Same(t, manifest, runtime.Manifest())
	assert.NotEmpty(t, runtime.InstanceID())

	router := mux.NewRouter()
	ns := router.PathPrefix("/plugins/notes").Subrouter()
	require.NoError(t, runtime.RegisterRoutes(ns))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins/notes/manifest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"notes"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins/notes/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), runtime.InstanceID())
}

func TestBasicRuntime_DistinctInstanceIDs(t *testing.T) {
	manifest := &Manifest{ID: "notes", Name: "Notes", Version: "1.0.0"}

	a := NewBasicRuntime(manifest)
	b := NewBasicRuntime(manifest)

	assert.NotEqual(t, a.InstanceID(), b.InstanceID())
}

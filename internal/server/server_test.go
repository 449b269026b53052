package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":   "<!DOCTYPE html><title>shell</title>",
		"lite-xl.js":   "var Module = window.Module;",
		"lite-xl.wasm": "\x00asm",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func get(t *testing.T, router http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestServesSite(t *testing.T) {
	router, err := NewRouter(Config{SiteDir: newSite(t)})
	require.NoError(t, err)

	w := get(t, router, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<title>shell</title>")
	require.Equal(t, "same-origin", w.Header().Get("Cross-Origin-Opener-Policy"))
	require.Equal(t, "require-corp", w.Header().Get("Cross-Origin-Embedder-Policy"))

	w = get(t, router, "/lite-xl.wasm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/wasm", w.Header().Get("Content-Type"))

	w = get(t, router, "/lite-xl.js", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/javascript; charset=utf-8", w.Header().Get("Content-Type"))

	w = get(t, router, "/missing.data", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	router, err := NewRouter(Config{SiteDir: newSite(t), Version: "v1.0.0"})
	require.NoError(t, err)

	w := get(t, router, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","version":"v1.0.0"}`, w.Body.String())
}

func TestRejectsWrites(t *testing.T) {
	router, err := NewRouter(Config{SiteDir: newSite(t)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/index.html", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORS(t *testing.T) {
	router, err := NewRouter(Config{
		SiteDir:        newSite(t),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	require.NoError(t, err)

	w := get(t, router, "/lite-xl.js", map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(t, router, "/lite-xl.js", map[string]string{"Origin": "http://evil.example"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoCORSByDefault(t *testing.T) {
	router, err := NewRouter(Config{SiteDir: newSite(t)})
	require.NoError(t, err)

	w := get(t, router, "/lite-xl.js", map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouterRequiresDirectory(t *testing.T) {
	_, err := NewRouter(Config{SiteDir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = NewRouter(Config{SiteDir: file})
	require.Error(t, err)
}

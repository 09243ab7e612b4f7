package todomvc

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Result()
}

func TestMountServesPage(t *testing.T) {
	r := chi.NewRouter()
	Mount(r, "/app")

	resp := get(t, r, "/app/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `class="new-todo"`)
	assert.Contains(t, string(body), `class="todo-list"`)

	resp = get(t, r, "/app/app.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ENTER_KEY = 13")
	assert.Contains(t, string(body), "'destroy'")
}

func TestMountRedirectsBarePrefix(t *testing.T) {
	r := chi.NewRouter()
	Mount(r, "/app")

	resp := get(t, r, "/app")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/app/", resp.Header.Get("Location"))
}

func TestMissingFile(t *testing.T) {
	resp := get(t, Handler(), "/nope.css")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

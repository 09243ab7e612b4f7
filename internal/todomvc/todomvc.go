// Package todomvc serves a dependency-free TodoMVC page that the suite can
// run against without an external application.
package todomvc

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static
var files embed.FS

// Static is the page's file tree (index.html, app.js).
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Handler serves the page at its root.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/*", http.FileServer(http.FS(Static())))
	return r
}

// Mount serves the page under prefix (e.g. "/app").
func Mount(r chi.Router, prefix string) {
	r.Get(prefix, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, prefix+"/", http.StatusMovedPermanently)
	})
	r.Mount(prefix+"/", http.StripPrefix(prefix, Handler()))
}

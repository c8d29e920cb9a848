package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewArtifactHandler serves the JSON and CSV artifacts in dir, GET only.
func NewArtifactHandler(dir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Compress(5))
	r.Use(middleware.SetHeader("Cache-Control", "no-cache"))

	files := http.FileServer(http.Dir(dir))
	r.Get("/*", files.ServeHTTP)
	r.Head("/*", files.ServeHTTP)
	return r
}

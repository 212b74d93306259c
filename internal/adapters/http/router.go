package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the extraction HTTP routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/extract/v1", func(r chi.Router) {
		r.Post("/workbooks", handler.processWorkbook)
		r.Get("/downloads/{token}", handler.downloadArtifact)
	})

	return r
}

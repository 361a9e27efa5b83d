package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/curator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/curator/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/curator/internal/httpserver/mw"
)

func init() { Register(registerOrganise) }

func registerOrganise(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), mw.Persona)

	api.Get("/api/organise/preview", handlers.Preview(d))
	api.Get("/api/organise/jobs/{id}", handlers.JobStatus(d))

	// Calls that reach the reasoning service are throttled per user.
	limited := api.With(mw.RateLimit(d.RateLimit))
	limited.Post("/api/organise/auto", handlers.AutoOrganise(d))
	limited.Post("/api/organise/extract-metadata", handlers.ExtractMetadata(d))
	limited.Post("/api/organise/extract-document-metadata", handlers.ExtractDocumentMetadata(d))
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/morb-dev/morbsite/internal/handler"
	"github.com/morb-dev/morbsite/internal/middleware/metrics"
)

// New wires all routes. The board endpoints live under /api to match the
// paths the site's frontend calls; /media serves stored meme images.
func New(h *handler.Handler, mediaRoot string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "x-moderation-secret"},
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.CreateMessage)
		r.Get("/messages/{id}", h.GetMessage)
		r.Post("/messages/{id}/reactions", h.ApplyReaction)
		r.Patch("/messages/{id}/delete", h.SoftDeleteMessage)

		r.Get("/memes", h.ListMemes)
		r.Post("/memes", h.CreateMeme)

		r.Get("/token-stats", h.TokenStats)
	})

	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaRoot))))

	return r
}

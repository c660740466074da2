// Package api exposes the synchronization service over HTTP/JSON.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/streamsync/subsync/internal/health"
	"github.com/streamsync/subsync/internal/syncer"
)

// NewRouter builds the service router.
func NewRouter(svc syncer.Service, checker *health.Checker, allowedOrigins []string, audioDuration time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.Handler(corsOptions(allowedOrigins)))

	h := newHandler(svc, checker, audioDuration)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/sync", h.Sync)
	r.Post("/offset", h.Offset)

	return r
}

func corsOptions(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// When wildcard is used, disable AllowCredentials to prevent CSRF
	allowCreds := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCreds = false
			break
		}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: allowCreds,
		MaxAge:           300,
	}
}

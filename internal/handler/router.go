package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sleighworks/santaline/internal/handler/relay"
	middlewarePkg "github.com/sleighworks/santaline/internal/middleware"
)

// NewRouter wires the relay proxy routes. Both route families are
// served: the edge-shaped endpoints at the root and the long-running
// variant under /api.
func NewRouter(relayHandler *relay.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	relayHandler.RegisterEdgeRoutes(r)

	r.Route("/api", func(api chi.Router) {
		relayHandler.RegisterRoutes(api)
	})

	return r
}

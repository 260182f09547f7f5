// Package server wires the HTTP surface: pages, component routes and the
// health check.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pthm/cyphergo/internal/hx"
	"github.com/pthm/cyphergo/internal/logger"
	"github.com/pthm/cyphergo/internal/ui"
)

// HealthPath answers liveness probes.
const HealthPath = "/healthz"

// Router is the application's chi router.
type Router struct {
	router *chi.Mux
}

// NewRouter builds the router. Every route is logged with zapLogger.
func NewRouter(pages *ui.Pages, reg *hx.Registry, zapLogger *zap.Logger) *Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(zapLogger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5, "text/html"))

	router.Get(ui.HomePath, pages.Home)
	router.Get(ui.HashingPath, pages.Hashing)
	router.Get(HealthPath, HealthHandler)

	hx.Mount(router, reg)

	return &Router{router: router}
}

// HealthHandler reports that the process is serving.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

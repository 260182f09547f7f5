package hx

import "github.com/go-chi/chi/v5"

// Mount serves the registry's components on a chi router, so they share
// the router's middleware (logging, recovery, request ids).
//
//	r := chi.NewRouter()
//	r.Use(middleware.Recoverer)
//	hx.Mount(r, reg)
func Mount(r chi.Router, reg *Registry) {
	r.Handle(BasePath+"*", reg.Handler())
}

package hx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// HXComponent is what the registry needs from a component. Embedding
// *Component[P] provides all of it.
type HXComponent interface {
	HXPrefix() string
	HXServeHTTP(w http.ResponseWriter, r *http.Request)
	Bind(enc *Encoder, onError ErrorHandler)
}

// Registry manages component registration and routing.
type Registry struct {
	mu         sync.RWMutex
	mux        *http.ServeMux
	encoder    *Encoder
	components map[string]HXComponent
	logger     *zap.Logger

	// OnError writes the response when a component fails outside its own
	// view: undecodable props, failed hydration, an Err result. Failures
	// are logged before OnError runs.
	OnError ErrorHandler
}

// NewRegistry creates a registry whose props are sealed with key.
func NewRegistry(key []byte, logger *zap.Logger) (*Registry, error) {
	enc, err := NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("hx: create encoder: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := &Registry{
		mux:        http.NewServeMux(),
		encoder:    enc,
		components: make(map[string]HXComponent),
		logger:     logger,
	}
	reg.OnError = DefaultErrorHandler
	return reg, nil
}

// Add registers components. It panics on a prefix collision, so wiring
// mistakes surface at startup rather than on a request.
func (reg *Registry) Add(components ...HXComponent) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, comp := range components {
		prefix := comp.HXPrefix()
		if _, exists := reg.components[prefix]; exists {
			panic(fmt.Sprintf("hx: prefix collision for %q", prefix))
		}
		comp.Bind(reg.encoder, reg.handleError)
		reg.components[prefix] = comp
		reg.mux.HandleFunc(prefix+"/", comp.HXServeHTTP)
		reg.logger.Debug("component registered", zap.String("prefix", prefix))
	}
}

// Handler returns the HTTP handler for component routes. Mount it at
// BasePath.
//
// Mutating methods require the HX-Request header htmx always sends. A
// cross-origin form cannot set it, which is the CSRF protection.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: htmx request required", http.StatusForbidden)
			return
		}
		reg.mux.ServeHTTP(w, r)
	})
}

func (reg *Registry) handleError(w http.ResponseWriter, r *http.Request, err error) {
	level := zap.ErrorLevel
	if IsNotFound(err) || IsDecodeError(err) {
		level = zap.WarnLevel
	}
	reg.logger.Check(level, "component request failed").Write(
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err),
	)
	reg.OnError(w, r, err)
}

// DefaultErrorHandler maps component errors onto plain HTTP errors.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsNotFound(err):
		http.Error(w, "Not found", http.StatusNotFound)
	case IsDecodeError(err):
		http.Error(w, "Bad request", http.StatusBadRequest)
	case errors.Is(err, ErrHydrationFailed):
		http.Error(w, "Hydration failed", http.StatusInternalServerError)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

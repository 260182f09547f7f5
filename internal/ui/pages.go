package ui

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/pthm/cyphergo/internal/hx"
	"github.com/pthm/cyphergo/internal/session"
	"github.com/pthm/cyphergo/internal/workflow"
)

// Page routes.
const (
	HomePath    = "/"
	HashingPath = "/hashing-apis"
)

// SessionStore creates and resolves page sessions.
type SessionStore interface {
	Sessions
	Create() (string, *workflow.Orchestrator)
}

// Pages serves the full-page routes.
type Pages struct {
	sessions SessionStore
	generate *GeneratePanel
	verify   *VerifyPanel
	logger   *zap.Logger
}

// NewPages returns the page handlers. The panels must be added to a
// registry before a page is served, so their actions can be wired.
func NewPages(sessions SessionStore, generate *GeneratePanel, verify *VerifyPanel, logger *zap.Logger) *Pages {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pages{sessions: sessions, generate: generate, verify: verify, logger: logger}
}

// Home serves the landing screen.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	if err := hx.Render(w, r, HomePage()); err != nil {
		p.logger.Error("render home", zap.Error(err))
	}
}

// Hashing starts a page session and serves both panels.
func (p *Pages) Hashing(w http.ResponseWriter, r *http.Request) {
	id, flow := p.sessions.Create()
	props := Props{SessionID: id, flow: flow}
	p.logger.Debug("page session created", zap.String("session", id))

	page := Layout("Hashing APIs", view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Hashing APIs</h1>`)
		h.render(ctx, p.generate.Panel(props))
		h.render(ctx, p.verify.Panel(props))
		h.raw(`<div class="nav"><a class="button" href="` + HomePath + `">Back to Home</a></div>`)
	}))

	w.Header().Set("Cache-Control", "no-store")
	if err := hx.Render(w, r, page); err != nil {
		p.logger.Error("render hashing page", zap.Error(err))
	}
}

// ErrorHandler renders an expired page session as a fragment asking for a
// reload, with status 410. Every other error goes to next.
func ErrorHandler(next hx.ErrorHandler) hx.ErrorHandler {
	if next == nil {
		next = hx.DefaultErrorHandler
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if !errors.Is(err, session.ErrExpired) {
			next(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		hx.Retarget(w, "closest .panel", hx.SwapInner)
		w.WriteHeader(http.StatusGone)
		_ = SessionExpired().Render(r.Context(), w)
	}
}

// SessionExpired replaces the contents of a panel whose page session is
// gone.
func SessionExpired() templ.Component {
	return view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<p class="error expired">This page has expired. `)
		h.raw(`<a href="` + HashingPath + `">Reload</a> to start again.</p>`)
	})
}

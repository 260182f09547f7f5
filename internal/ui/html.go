package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/cyphergo/internal/hx"
)

// htmlWriter keeps the first write error so views can be written as a flat
// sequence of calls.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attrs(a templ.Attributes) {
	if h.err == nil {
		h.err = hx.WriteAttrs(h.w, a)
	}
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

// view adapts a flat writer function to templ.Component.
func view(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

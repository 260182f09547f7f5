package hx

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/a-h/templ"
)

// BasePath is where the registry serves component routes.
const BasePath = "/_c/"

// Lifecycle is implemented by every component.
//
// Hydrate runs once per request, before any handler, and turns the lean
// decoded props into complete ones (for example by resolving an id).
// Render must be pure: it reads props and produces HTML.
type Lifecycle[P any] interface {
	Hydrate(ctx context.Context, props *P) error
	Render(ctx context.Context, props P) templ.Component
}

// Handler is the signature of an action handler.
type Handler[P any] func(ctx context.Context, props P, r *http.Request) Result[P]

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type actionDef[P any] struct {
	method  string
	handler Handler[P]
}

// Component[P] is the base type embedded by components. P is the props type.
//
//	type Panel struct {
//	    *hx.Component[PanelProps]
//	}
//
//	func NewPanel() *Panel {
//	    c := &Panel{}
//	    c.Component = hx.New[PanelProps]("panel", c)
//	    c.Action("submit", c.handleSubmit)
//	    return c
//	}
//
// Each component instance receives a deterministic URL prefix derived from
// its name and the file:line of the New call.
type Component[P any] struct {
	name      string
	prefix    string
	sensitive bool
	actions   map[string]*actionDef[P]
	self      Lifecycle[P]
	encoder   *Encoder
	onError   ErrorHandler
}

// New creates a component named name whose lifecycle is implemented by self,
// normally the struct embedding the returned *Component[P].
func New[P any](name string, self Lifecycle[P]) *Component[P] {
	return &Component[P]{
		name:    name,
		prefix:  BasePath + name + "-" + componentHash(name, 1),
		actions: make(map[string]*actionDef[P]),
		self:    self,
	}
}

// Sensitive switches props from signed to encrypted.
func (c *Component[P]) Sensitive() *Component[P] {
	c.sensitive = true
	return c
}

// Name returns the component's name.
func (c *Component[P]) Name() string { return c.name }

// HXPrefix returns the component's URL prefix.
func (c *Component[P]) HXPrefix() string { return c.prefix }

// Bind connects the component to a registry's encoder and error handler.
// Registry.Add calls it.
func (c *Component[P]) Bind(enc *Encoder, onError ErrorHandler) {
	c.encoder = enc
	c.onError = onError
}

// Action registers a named action handler. Actions default to POST.
//
//	c.Action("submit", c.handleSubmit)
//	c.Action("peek", c.handlePeek).Method(http.MethodGet)
func (c *Component[P]) Action(name string, handler Handler[P]) *ActionBuilder {
	def := &actionDef[P]{method: http.MethodPost, handler: handler}
	c.actions[name] = def
	return &ActionBuilder{method: &def.method}
}

// Wire returns the htmx attributes that invoke action with props. An empty
// action is the default render (GET).
func (c *Component[P]) Wire(action string, props P) templ.Attributes {
	method := http.MethodGet
	if action != "" {
		def, ok := c.actions[action]
		if !ok {
			panic(fmt.Sprintf("hx: %s has no action %q", c.name, action))
		}
		method = def.method
	}
	return WireAttrs(c.actionPath(action), method, c.encode(props))
}

// HXServeHTTP decodes props, hydrates them, dispatches to the action named
// by the path suffix and writes the Result.
func (c *Component[P]) HXServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var props P
	if encoded := r.FormValue("p"); encoded != "" {
		if c.encoder == nil {
			c.fail(w, r, fmt.Errorf("hx: %s is not registered", c.name))
			return
		}
		if err := c.encoder.Decode(encoded, c.sensitive, &props); err != nil {
			c.fail(w, r, wrapEncodingError(err))
			return
		}
	}

	if err := c.self.Hydrate(ctx, &props); err != nil {
		c.fail(w, r, fmt.Errorf("%w: %w", ErrHydrationFailed, err))
		return
	}

	action := strings.Trim(strings.TrimPrefix(r.URL.Path, c.prefix), "/")
	if action == "" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c.handleResult(w, r, OK(props))
		return
	}

	def, ok := c.actions[action]
	if !ok {
		c.fail(w, r, fmt.Errorf("%w: action %q", ErrNotFound, action))
		return
	}
	if r.Method != def.method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.handleResult(w, r, def.handler(ctx, props, r))
}

func (c *Component[P]) handleResult(w http.ResponseWriter, r *http.Request, result Result[P]) {
	if err := result.GetErr(); err != nil {
		c.fail(w, r, err)
		return
	}

	h := w.Header()
	for k, v := range result.GetHeaders() {
		h.Set(k, v)
	}
	if trigger := BuildTriggerHeader(result.GetTrigger(), result.GetTriggerData()); trigger != "" {
		h.Set("HX-Trigger", trigger)
	}

	status := result.GetStatus()
	if status == 0 {
		status = http.StatusOK
	}

	if result.ShouldSkip() {
		w.WriteHeader(status)
		return
	}

	// Render into a buffer so a template error can still become a 500.
	var buf bytes.Buffer
	if err := c.self.Render(r.Context(), result.GetProps()).Render(r.Context(), &buf); err != nil {
		c.fail(w, r, err)
		return
	}
	buf.WriteString(RenderFlashesOOB(result.GetFlashes()))

	h.Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.Copy(w, &buf)
}

func (c *Component[P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.onError != nil {
		c.onError(w, r, err)
		return
	}
	DefaultErrorHandler(w, r, err)
}

func (c *Component[P]) actionPath(action string) string {
	return c.prefix + "/" + action
}

func (c *Component[P]) encode(props P) string {
	if c.encoder == nil {
		return ""
	}
	encoded, err := c.encoder.Encode(props, c.sensitive)
	if err != nil {
		return ""
	}
	return encoded
}

// componentHash derives 8 hex chars from the caller's file:line and name.
func componentHash(name string, skip int) string {
	input := name
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		input = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
	}
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}

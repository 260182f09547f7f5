// Package hx is a small component system for server-rendered htmx pages
// built on templ.
//
// A component embeds *Component[P], where P is its props type, implements
// Lifecycle[P] and registers named actions:
//
//	type Panel struct {
//	    *hx.Component[PanelProps]
//	    store Store
//	}
//
//	func NewPanel(store Store) *Panel {
//	    c := &Panel{store: store}
//	    c.Component = hx.New[PanelProps]("panel", c)
//	    c.Action("submit", c.handleSubmit)
//	    return c
//	}
//
// # Props
//
// Props round-trip through the browser. They are packed with msgpack and
// either signed (HMAC, the default) or encrypted (AES-GCM, via Sensitive).
// Keep them lean: ids, not objects. Hydrate resolves ids into the rich
// values Render and the handlers need, and runs before every handler.
//
// # Actions
//
// Wire produces the htmx attributes for an action, carrying the sealed
// props in the query string (GET) or in hx-vals (everything else):
//
//	<form {c.Wire("submit", props)...} hx-target="this" hx-swap="outerHTML">
//
// Handlers return a Result: OK re-renders, Flash adds a toast, Trigger
// fires a browser event, Err hands the error to the registry.
//
// # Registration
//
//	reg, err := hx.NewRegistry(key, logger)
//	reg.Add(generatePanel, verifyPanel)
//	hx.Mount(router, reg)
//
// Mutating requests must carry HX-Request: true, which cross-origin forms
// cannot set.
package hx

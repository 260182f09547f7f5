package hx

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

// ActionBuilder configures a registered action.
type ActionBuilder struct {
	method *string
}

// Method overrides the default POST method for an action.
func (ab *ActionBuilder) Method(m string) *ActionBuilder {
	*ab.method = m
	return ab
}

// WireAttrs builds the minimal htmx attributes for a component action.
//
// GET actions carry props in the query string (hx-get). Other methods carry
// them in hx-vals, so they travel in the form body next to the form's own
// fields. Everything else (hx-target, hx-swap, hx-trigger) is written by the
// template.
func WireAttrs(path, method, encoded string) templ.Attributes {
	attrs := templ.Attributes{}

	switch method {
	case http.MethodGet, "":
		url := path
		if encoded != "" {
			url += "?p=" + encoded
		}
		attrs["hx-get"] = url
		return attrs
	case http.MethodPut:
		attrs["hx-put"] = path
	case http.MethodPatch:
		attrs["hx-patch"] = path
	case http.MethodDelete:
		attrs["hx-delete"] = path
	default:
		attrs["hx-post"] = path
	}

	if encoded != "" {
		data, _ := json.Marshal(map[string]string{"p": encoded})
		attrs["hx-vals"] = string(data)
	}
	return attrs
}

package hx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response as HTML.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// BuildTriggerHeader builds an HX-Trigger header value.
//
//	"item-updated", nil            -> item-updated
//	"clipboard:write", {"text": x} -> {"clipboard:write":{"text":"x"}}
func BuildTriggerHeader(trigger string, data map[string]any) string {
	if trigger == "" {
		return ""
	}
	if data == nil {
		return trigger
	}
	encoded, err := json.Marshal(map[string]any{trigger: data})
	if err != nil {
		return trigger
	}
	return string(encoded)
}

// WriteAttrs writes attrs as HTML attributes, sorted by name and escaped.
// Views written as templ.ComponentFunc use it to splice in Wire output.
// A true bool renders as a bare attribute and false is omitted.
func WriteAttrs(w io.Writer, attrs templ.Attributes) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var err error
		switch v := attrs[name].(type) {
		case bool:
			if v {
				_, err = io.WriteString(w, " "+templ.EscapeString(name))
			}
		default:
			_, err = fmt.Fprintf(w, ` %s="%s"`, templ.EscapeString(name), templ.EscapeString(fmt.Sprint(v)))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

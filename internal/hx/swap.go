package hx

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/samber/lo"
)

// SwapMode is an hx-swap strategy.
type SwapMode string

const (
	// SwapOuter replaces the whole target element. It is htmx's usual choice
	// for components that render their own root.
	SwapOuter SwapMode = "outerHTML"
	// SwapInner replaces only the target's children.
	SwapInner SwapMode = "innerHTML"
	// SwapBeforeEnd appends to the target. Toasts use it.
	SwapBeforeEnd SwapMode = "beforeend"
	// SwapNone discards the response body; headers such as HX-Trigger still
	// apply.
	SwapNone SwapMode = "none"
)

// Targeting returns hx-target and hx-swap attributes. An empty target
// leaves hx-target to inheritance.
func Targeting(target string, swap SwapMode) templ.Attributes {
	attrs := templ.Attributes{"hx-swap": string(swap)}
	if target != "" {
		attrs["hx-target"] = target
	}
	return attrs
}

// Merge combines attribute sets into a new one. Later sets win.
//
//	hx.Merge(c.Wire("submit", props), hx.Targeting("#out", hx.SwapOuter))
func Merge(sets ...templ.Attributes) templ.Attributes {
	return lo.Assign(sets...)
}

// Retarget tells htmx to swap this response into target with swap instead
// of what the triggering element asked for. Call it before WriteHeader.
func Retarget(w http.ResponseWriter, target string, swap SwapMode) {
	w.Header().Set("HX-Retarget", target)
	w.Header().Set("HX-Reswap", string(swap))
}

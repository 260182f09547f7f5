package ui

import (
	"context"

	"github.com/a-h/templ"

	"github.com/pthm/cyphergo/internal/hx"
)

// Browser events sent through HX-Trigger.
const (
	// ClipboardEvent carries {"text": ...} for navigator.clipboard.
	ClipboardEvent = "clipboard:write"
	// FieldEvent carries {"name": ..., "value": ...} so every input bound
	// to a shared field shows its latest value.
	FieldEvent = "form:field"
)

const htmxConfig = `{"responseHandling":[` +
	`{"code":"204","swap":false},` +
	`{"code":"[23]..","swap":true},` +
	`{"code":"410","swap":true,"error":false},` +
	`{"code":"[45]..","swap":false,"error":true}]}`

const script = `
document.addEventListener("` + ClipboardEvent + `", function (e) {
  if (navigator.clipboard) {
    navigator.clipboard.writeText(e.detail.text).catch(function () {});
  }
});
document.addEventListener("` + FieldEvent + `", function (e) {
  document.querySelectorAll('[name="' + CSS.escape(e.detail.name) + '"]').forEach(function (el) {
    if (el !== document.activeElement && el.value !== e.detail.value) {
      el.value = e.detail.value;
    }
  });
});
document.addEventListener("htmx:oobAfterSwap", function () {
  document.querySelectorAll("[data-auto-dismiss]").forEach(function (t) {
    setTimeout(function () { t.remove(); }, Number(t.dataset.autoDismiss));
    t.removeAttribute("data-auto-dismiss");
  });
});
`

const style = `
body { font-family: system-ui, sans-serif; background: #111827; color: #fff; display: flex; flex-direction: column; align-items: center; padding: 1.5rem; }
.card, .panel { background: #1f2937; padding: 1.5rem; border-radius: .5rem; width: 100%; max-width: 28rem; margin-top: 1.5rem; }
.card { text-align: center; }
.card a { font-size: 1.5rem; color: #60a5fa; text-decoration: none; }
form { display: flex; flex-direction: column; gap: 1rem; }
input, select { padding: .5rem; border-radius: .25rem; border: 0; background: #374151; color: #fff; }
button, .button { background: #2563eb; color: #fff; padding: .5rem; border: 0; border-radius: .375rem; cursor: pointer; text-decoration: none; }
.output[aria-busy="true"] { opacity: .6; }
.result { margin-top: 1rem; padding: 1rem; background: #374151; border-radius: .5rem; font-size: .875rem; }
.hash { word-break: break-all; background: #111827; padding: .5rem; border-radius: .375rem; display: inline-block; }
.copy { margin-left: .5rem; background: #16a34a; }
.error { margin-top: 1rem; color: #ef4444; }
.banner { margin-top: 1rem; padding: 1rem; border-radius: .5rem; }
.banner-positive { background: #16a34a; }
.banner-negative { background: #dc2626; }
.toast-container { position: fixed; top: 1rem; right: 1rem; }
.toast { padding: .75rem 1rem; margin-bottom: .5rem; border-radius: .375rem; background: #374151; }
.toast-error { background: #dc2626; }
.toast-warning { background: #d97706; }
`

// HTMXSource is the script tag's src. Tests and air-gapped deployments can
// point it at a local copy.
var HTMXSource = "https://unpkg.com/htmx.org@2.0.4"

// Layout wraps body in the HTML document every page shares.
func Layout(title string, body templ.Component) templ.Component {
	return view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="htmx-config" content="`)
		h.text(htmxConfig)
		h.raw(`"><title>`)
		h.text(title)
		h.raw(`</title><style>` + style + `</style>`)
		h.raw(`<script src="`)
		h.text(HTMXSource)
		h.raw(`"></script><script>` + script + `</script></head><body>`)
		h.render(ctx, body)
		h.render(ctx, hx.ToastContainer())
		h.raw(`</body></html>`)
	})
}

// HomePage is the landing screen.
func HomePage() templ.Component {
	return Layout("CypherGo", view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>CypherGo</h1>`)
		h.raw(`<div class="card"><a href="` + HashingPath + `">Hashing APIs</a>`)
		h.raw(`<h3>Hash Generation</h3><h3>Hash Verification</h3></div>`)
	}))
}

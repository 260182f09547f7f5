package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/samber/lo"

	"github.com/pthm/cyphergo/internal/form"
	"github.com/pthm/cyphergo/internal/hashapi"
	"github.com/pthm/cyphergo/internal/hx"
	"github.com/pthm/cyphergo/internal/present"
	"github.com/pthm/cyphergo/internal/workflow"
)

// Output regions the panels' actions swap.
const (
	generateOutputID = "generate-output"
	verifyOutputID   = "verify-output"
)

// Sessions resolves a page session id to its orchestrator.
type Sessions interface {
	Get(id string) (*workflow.Orchestrator, error)
}

// Props are shared by both panels. Only the session id travels through the
// browser, encrypted, since it is all a request needs to act on the page.
// The orchestrator is resolved by Hydrate.
type Props struct {
	SessionID string `msgpack:"s"`

	flow *workflow.Orchestrator
}

func hydrate(sessions Sessions, props *Props) error {
	flow, err := sessions.Get(props.SessionID)
	if err != nil {
		return fmt.Errorf("page session %q: %w", props.SessionID, err)
	}
	props.flow = flow
	return nil
}

// formFields returns the posted form values without the props field.
func formFields(r *http.Request) map[string]string {
	if err := r.ParseForm(); err != nil {
		return nil
	}
	last := lo.MapValues(r.PostForm, func(vs []string, _ string) string {
		return vs[len(vs)-1]
	})
	return lo.OmitByKeys(last, []string{"p"})
}

// handleField records one edit. The response has no body; the edit is
// echoed as FieldEvent so the same input in the other panel follows.
func handleField(props Props, r *http.Request) hx.Result[Props] {
	fields := formFields(r)
	props.flow.SetFields(fields)

	res := hx.Skip[Props]().Status(http.StatusNoContent)
	if len(fields) == 1 {
		for name, value := range fields {
			res = res.Trigger(FieldEvent, map[string]any{"name": name, "value": value})
		}
	}
	return res
}

// ownFields picks the posted values of the inputs only one panel renders.
// Shared inputs are never taken from a submit: the page session already
// holds the last edit, and this panel's copy may be one the user never
// touched.
func ownFields(r *http.Request, names ...string) map[string]string {
	return lo.PickByKeys(formFields(r), names)
}

// GeneratePanel is the Hash Generation form and its result.
type GeneratePanel struct {
	*hx.Component[Props]
	sessions Sessions
}

// NewGeneratePanel creates the panel.
func NewGeneratePanel(sessions Sessions) *GeneratePanel {
	c := &GeneratePanel{sessions: sessions}
	c.Component = hx.New[Props]("generate", c).Sensitive()
	c.Action("field", c.handleField)
	c.Action("submit", c.handleSubmit)
	c.Action("copy", c.handleCopy)
	return c
}

func (c *GeneratePanel) Hydrate(ctx context.Context, props *Props) error {
	return hydrate(c.sessions, props)
}

// Render draws the output region: the error, or the hash with its copy
// button.
func (c *GeneratePanel) Render(ctx context.Context, props Props) templ.Component {
	v := props.flow.GenerateView()
	return view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div id="` + generateOutputID + `" class="output"`)
		if v.Submitting {
			h.raw(` aria-busy="true"`)
		}
		h.raw(`>`)
		switch {
		case v.Error != "":
			h.raw(`<p class="error">Error: `)
			h.text(v.Error)
			h.raw(`</p>`)
		case v.HasResult:
			h.raw(`<div class="result"><p><strong>Algorithm:</strong> `)
			h.text(v.Algorithm)
			h.raw(`</p><p><strong>Hash Value:</strong> <span class="hash">`)
			h.text(v.HashValue)
			h.raw(`</span><button type="button" class="copy"`)
			h.attrs(hx.Merge(c.Wire("copy", props), hx.Targeting("#"+generateOutputID, hx.SwapOuter)))
			h.raw(`>`)
			h.text(v.CopyLabel)
			h.raw(`</button></p></div>`)
		}
		h.raw(`</div>`)
	})
}

// Panel draws the whole panel for a page load.
func (c *GeneratePanel) Panel(props Props) templ.Component {
	payload := props.flow.Payload()
	return view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="panel" id="generate-panel"><h2>Hash Generation</h2><form`)
		h.attrs(hx.Merge(c.Wire("submit", props), hx.Targeting("#"+generateOutputID, hx.SwapOuter), submitQueue))
		h.raw(`>`)
		writeInput(h, c.Wire("field", props), "generate", form.FieldData, "Message", payload.Value(form.FieldData))
		writeAlgorithmSelect(h, c.Wire("field", props), "generate", payload.Value(form.FieldAlgorithm))
		h.raw(`<button type="submit">Generate Hash</button></form>`)
		h.render(ctx, c.Render(ctx, props))
		h.raw(`</section>`)
	})
}

func (c *GeneratePanel) handleField(ctx context.Context, props Props, r *http.Request) hx.Result[Props] {
	return handleField(props, r)
}

func (c *GeneratePanel) handleSubmit(ctx context.Context, props Props, r *http.Request) hx.Result[Props] {
	props.flow.SubmitGenerate(ctx)
	return hx.OK(props)
}

func (c *GeneratePanel) handleCopy(ctx context.Context, props Props, r *http.Request) hx.Result[Props] {
	var cb browserClipboard
	err := props.flow.Copy(ctx, &cb)
	switch {
	case errors.Is(err, workflow.ErrNothingToCopy):
		return hx.OK(props).Flash(hx.FlashWarning, "Generate a hash first.")
	case err != nil:
		return hx.OK(props).Flash(hx.FlashError, "Copy failed.")
	}
	return hx.OK(props).Trigger(ClipboardEvent, map[string]any{"text": cb.text})
}

// browserClipboard hands the text to the browser as a ClipboardEvent. It
// can only report whether the response is still deliverable; a rejection
// from navigator.clipboard happens after the response and is not seen here.
type browserClipboard struct {
	text string
}

var _ present.Clipboard = (*browserClipboard)(nil)

func (b *browserClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.text = text
	return nil
}

// VerifyPanel is the Hash Verification form and its verdict.
type VerifyPanel struct {
	*hx.Component[Props]
	sessions Sessions
}

// NewVerifyPanel creates the panel.
func NewVerifyPanel(sessions Sessions) *VerifyPanel {
	c := &VerifyPanel{sessions: sessions}
	c.Component = hx.New[Props]("verify", c).Sensitive()
	c.Action("field", c.handleField)
	c.Action("submit", c.handleSubmit)
	return c
}

func (c *VerifyPanel) Hydrate(ctx context.Context, props *Props) error {
	return hydrate(c.sessions, props)
}

// Render draws the output region: the verdict banner or the error.
func (c *VerifyPanel) Render(ctx context.Context, props Props) templ.Component {
	v := props.flow.VerifyView()
	return view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div id="` + verifyOutputID + `" class="output"`)
		if v.Submitting {
			h.raw(` aria-busy="true"`)
		}
		h.raw(`>`)
		switch {
		case v.Error != "":
			h.raw(`<p class="error">Error: `)
			h.text(v.Error)
			h.raw(`</p>`)
		case v.HasResult:
			h.raw(`<div class="banner banner-` + string(v.Tone) + `"><p><strong>Result:</strong> `)
			h.text(v.Message)
			h.raw(`</p></div>`)
		}
		h.raw(`</div>`)
	})
}

// Panel draws the whole panel for a page load.
func (c *VerifyPanel) Panel(props Props) templ.Component {
	payload := props.flow.Payload()
	return view(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="panel" id="verify-panel"><h2>Hash Verification</h2><form`)
		h.attrs(hx.Merge(c.Wire("submit", props), hx.Targeting("#"+verifyOutputID, hx.SwapOuter), submitQueue))
		h.raw(`>`)
		writeInput(h, c.Wire("field", props), "verify", form.FieldData, "Message", payload.Value(form.FieldData))
		writeInput(h, c.Wire("field", props), "verify", form.FieldHashValue, "Hashed Value", payload.Value(form.FieldHashValue))
		writeAlgorithmSelect(h, c.Wire("field", props), "verify", payload.Value(form.FieldAlgorithm))
		h.raw(`<button type="submit">Verify Hash</button></form>`)
		h.render(ctx, c.Render(ctx, props))
		h.raw(`</section>`)
	})
}

func (c *VerifyPanel) handleField(ctx context.Context, props Props, r *http.Request) hx.Result[Props] {
	return handleField(props, r)
}

func (c *VerifyPanel) handleSubmit(ctx context.Context, props Props, r *http.Request) hx.Result[Props] {
	props.flow.SetFields(ownFields(r, form.FieldHashValue))
	props.flow.SubmitVerify(ctx)
	return hx.OK(props)
}

// Field edits and submits of one form share the form's request queue, so
// a submit goes out after the edits issued before it. Leaving an input or
// pressing Enter sends a pending edit without waiting for the debounce.
var (
	submitQueue = templ.Attributes{"hx-sync": "this:queue all"}
	fieldQueue  = templ.Attributes{"hx-sync": "closest form:queue all"}
)

// writeInput writes a text input that posts itself to the field action.
func writeInput(h *htmlWriter, field templ.Attributes, panel, name, placeholder, value string) {
	h.raw(`<input type="text" name="` + name + `" id="` + panel + "-" + name + `" placeholder="`)
	h.text(placeholder)
	h.raw(`" value="`)
	h.text(value)
	h.raw(`"`)
	h.attrs(hx.Merge(field, hx.Targeting("", hx.SwapNone), fieldQueue, templ.Attributes{
		"hx-params":  "p," + name,
		"hx-trigger": "input changed delay:150ms, blur, keydown[key=='Enter']",
	}))
	h.raw(`>`)
}

func writeAlgorithmSelect(h *htmlWriter, field templ.Attributes, panel, current string) {
	h.raw(`<select name="` + form.FieldAlgorithm + `" id="` + panel + `-algorithm"`)
	h.attrs(hx.Merge(field, hx.Targeting("", hx.SwapNone), fieldQueue, templ.Attributes{
		"hx-params":  "p," + form.FieldAlgorithm,
		"hx-trigger": "change",
	}))
	h.raw(`>`)
	for _, a := range hashapi.Algorithms() {
		h.raw(`<option value="` + string(a) + `"`)
		if string(a) == current {
			h.raw(` selected`)
		}
		h.raw(`>` + string(a) + `</option>`)
	}
	h.raw(`</select>`)
}

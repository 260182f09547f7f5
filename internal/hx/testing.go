package hx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// TestResult holds the outcome of rendering a component or running an
// action in a test.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents map[string]any
	Flashes         []Flash
}

// TestRender runs Hydrate and Render without HTTP. Use it for pure view
// tests where the props are built by hand.
func TestRender[P any](ctx context.Context, comp Lifecycle[P], props P) (*TestResult, error) {
	if err := comp.Hydrate(ctx, &props); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := comp.Render(ctx, props).Render(ctx, &buf); err != nil {
		return nil, err
	}

	return &TestResult{
		HTML:       buf.String(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}, nil
}

// TestAction sends an htmx request to a component and records the
// response. attrs are the attributes produced by Wire, so tests exercise
// the same URL and props encoding as the browser.
//
//	res := hx.TestAction(ctx, panel, panel.Wire("submit", props), map[string]string{
//	    "data": "hello",
//	})
func TestAction(ctx context.Context, comp HXComponent, attrs templ.Attributes, form map[string]string) *TestResult {
	method, target := http.MethodGet, ""
	for _, m := range []string{"get", "post", "put", "patch", "delete"} {
		if v, ok := attrs["hx-"+m].(string); ok {
			method, target = strings.ToUpper(m), v
			break
		}
	}

	values := form2values(form)
	if vals, ok := attrs["hx-vals"].(string); ok {
		var extra map[string]string
		if err := json.Unmarshal([]byte(vals), &extra); err == nil {
			for k, v := range extra {
				values.Set(k, v)
			}
		}
	}

	var req *http.Request
	if method == http.MethodGet {
		if len(form) > 0 {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + form2values(form).Encode()
		}
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req = req.WithContext(ctx)
	req.Header.Set("HX-Request", "true")

	rec := httptest.NewRecorder()
	comp.HXServeHTTP(rec, req)

	return &TestResult{
		HTML:            rec.Body.String(),
		StatusCode:      rec.Code,
		Headers:         rec.Header(),
		TriggeredEvents: parseTriggerHeader(rec.Header().Get("HX-Trigger")),
		Flashes:         parseFlashesFromHTML(rec.Body.String()),
	}
}

func form2values(form map[string]string) url.Values {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	return values
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasEvent checks if an event was triggered.
func (r *TestResult) HasEvent(event string) bool {
	_, ok := r.TriggeredEvents[event]
	return ok
}

// HasFlash checks for a flash with the given level and message.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// parseTriggerHeader decodes an HX-Trigger value into event name -> detail.
// Plain values are comma-separated names with a nil detail.
func parseTriggerHeader(trigger string) map[string]any {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}

	events := make(map[string]any)
	if strings.HasPrefix(trigger, "{") {
		if err := json.Unmarshal([]byte(trigger), &events); err != nil {
			return nil
		}
		return events
	}

	for _, name := range strings.Split(trigger, ",") {
		if name = strings.TrimSpace(name); name != "" {
			events[name] = nil
		}
	}
	return events
}

// parseFlashesFromHTML extracts flashes rendered by RenderFlashesOOB.
func parseFlashesFromHTML(html string) []Flash {
	const prefix = `<div class="toast toast-`
	var flashes []Flash

	rest := html
	for {
		start := strings.Index(rest, prefix)
		if start == -1 {
			return flashes
		}
		rest = rest[start+len(prefix):]

		level, after, ok := strings.Cut(rest, `"`)
		if !ok {
			return flashes
		}
		_, body, ok := strings.Cut(after, ">")
		if !ok {
			return flashes
		}
		message, tail, ok := strings.Cut(body, "</div>")
		if !ok {
			return flashes
		}

		flashes = append(flashes, Flash{Level: level, Message: message})
		rest = tail
	}
}

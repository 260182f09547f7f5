package hx

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRenderFlashesOOBEmpty(t *testing.T) {
	if got := RenderFlashesOOB(nil); got != "" {
		t.Errorf("RenderFlashesOOB(nil) = %q, want empty string", got)
	}
}

func TestRenderFlashesOOB(t *testing.T) {
	got := RenderFlashesOOB([]Flash{
		{Level: FlashSuccess, Message: "Copied"},
		{Level: FlashError, Message: `<script>alert("x")</script>`},
	})

	for _, want := range []string{
		`id="toasts"`,
		`hx-swap-oob="beforeend"`,
		`class="toast toast-success"`,
		`class="toast toast-error"`,
		`data-auto-dismiss="3000"`,
		`&lt;script&gt;`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderFlashesOOB() missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "<script>") {
		t.Error("flash message was not escaped")
	}
}

func TestParseFlashesRoundTrip(t *testing.T) {
	html := `<div>panel</div>` + RenderFlashesOOB([]Flash{
		{Level: FlashWarning, Message: "one"},
		{Level: FlashInfo, Message: "two"},
	})

	flashes := parseFlashesFromHTML(html)
	if len(flashes) != 2 {
		t.Fatalf("len(flashes) = %d, want 2", len(flashes))
	}
	if flashes[0] != (Flash{Level: FlashWarning, Message: "one"}) {
		t.Errorf("flashes[0] = %+v", flashes[0])
	}
	if flashes[1] != (Flash{Level: FlashInfo, Message: "two"}) {
		t.Errorf("flashes[1] = %+v", flashes[1])
	}
}

func TestToastContainer(t *testing.T) {
	var buf bytes.Buffer
	if err := ToastContainer().Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), `id="toasts"`) {
		t.Errorf("ToastContainer() = %q", buf.String())
	}
}

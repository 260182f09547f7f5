package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pthm/cyphergo/internal/form"
	"github.com/pthm/cyphergo/internal/hashapi"
	"github.com/pthm/cyphergo/internal/hx"
	"github.com/pthm/cyphergo/internal/session"
	"github.com/pthm/cyphergo/internal/workflow"
)

type stubService struct {
	generate func(hashapi.GenerateRequest) (hashapi.HashResult, error)
	verify   func(hashapi.VerifyRequest) (hashapi.VerificationResult, error)
}

func (s *stubService) Generate(_ context.Context, req hashapi.GenerateRequest) (hashapi.HashResult, error) {
	return s.generate(req)
}

func (s *stubService) Verify(_ context.Context, req hashapi.VerifyRequest) (hashapi.VerificationResult, error) {
	return s.verify(req)
}

func echoService() *stubService {
	return &stubService{
		generate: func(req hashapi.GenerateRequest) (hashapi.HashResult, error) {
			return hashapi.HashResult{Algorithm: string(req.Algorithm), HashValue: "digest-of-" + req.Data}, nil
		},
		verify: func(req hashapi.VerifyRequest) (hashapi.VerificationResult, error) {
			if req.HashValue == "digest-of-"+req.Data {
				return hashapi.VerificationResult{IsValid: true, Message: "Hash matches the data."}, nil
			}
			return hashapi.VerificationResult{IsValid: false, Message: "Hash does not match the data."}, nil
		},
	}
}

type fixture struct {
	store    *session.Store[*workflow.Orchestrator]
	generate *GeneratePanel
	verify   *VerifyPanel
	pages    *Pages
}

func newFixture(t *testing.T, svc hashapi.Service) *fixture {
	t.Helper()

	store := session.NewStore(time.Minute, func() *workflow.Orchestrator { return workflow.New(svc) })
	reg, err := hx.NewRegistry([]byte("ui-test-key"), zap.NewNop())
	require.NoError(t, err)
	reg.OnError = ErrorHandler(reg.OnError)

	f := &fixture{
		store:    store,
		generate: NewGeneratePanel(store),
		verify:   NewVerifyPanel(store),
	}
	reg.Add(f.generate, f.verify)
	f.pages = NewPages(store, f.generate, f.verify, zap.NewNop())
	return f
}

func (f *fixture) session(t *testing.T) Props {
	t.Helper()
	id, _ := f.store.Create()
	return Props{SessionID: id}
}

func TestHomePage(t *testing.T) {
	f := newFixture(t, echoService())
	rec := httptest.NewRecorder()

	f.pages.Home(rec, httptest.NewRequest(http.MethodGet, HomePath, nil))

	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `<title>CypherGo</title>`)
	assert.Contains(t, body, `href="/hashing-apis"`)
	assert.Contains(t, body, "Hash Generation")
	assert.Contains(t, body, "Hash Verification")
	assert.Contains(t, body, `id="toasts"`)
}

func TestHashingPageCreatesSession(t *testing.T) {
	f := newFixture(t, echoService())
	rec := httptest.NewRecorder()

	f.pages.Hashing(rec, httptest.NewRequest(http.MethodGet, HashingPath, nil))

	body := rec.Body.String()
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	for _, want := range []string{
		"Hash Generation", "Hash Verification", "Back to Home",
		`id="generate-output"`, `id="verify-output"`,
		`name="data"`, `name="hash_value"`,
		`<option value="MD5" selected>MD5</option>`,
		`<option value="SHA-256">SHA-256</option>`,
		`<option value="SHA-512">SHA-512</option>`,
		f.generate.HXPrefix() + "/submit", f.verify.HXPrefix() + "/submit",
		`hx-sync="this:queue all"`, `hx-sync="closest form:queue all"`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "Error:")
	assert.NotContains(t, body, "Copy</button>")
}

// edit posts one field edit the way an input does.
func (f *fixture) edit(t *testing.T, props Props, name, value string) *hx.TestResult {
	t.Helper()
	res := hx.TestAction(context.Background(), f.generate, f.generate.Wire("field", props), map[string]string{name: value})
	require.Equal(t, http.StatusNoContent, res.StatusCode, res.HTML)
	return res
}

func TestGenerateSubmit(t *testing.T) {
	f := newFixture(t, echoService())
	props := f.session(t)
	f.edit(t, props, form.FieldData, "abc")
	f.edit(t, props, form.FieldAlgorithm, "SHA-256")

	res := hx.TestAction(context.Background(), f.generate, f.generate.Wire("submit", props), map[string]string{
		form.FieldData:      "abc",
		form.FieldAlgorithm: "SHA-256",
	})

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, res.HTMLContainsAll(
		`<strong>Algorithm:</strong> SHA-256`,
		`<span class="hash">digest-of-abc</span>`,
		`>Copy</button>`,
	), res.HTML)
	assert.False(t, res.HTMLContains("Error:"))
}

func TestGenerateRejection(t *testing.T) {
	svc := echoService()
	svc.generate = func(hashapi.GenerateRequest) (hashapi.HashResult, error) {
		return hashapi.HashResult{}, &hashapi.Error{Kind: hashapi.KindServiceRejection, Message: "bad algorithm"}
	}
	f := newFixture(t, svc)
	props := f.session(t)
	f.edit(t, props, form.FieldData, "abc")

	ver := hx.TestAction(context.Background(), f.verify, f.verify.Wire("submit", props), map[string]string{
		form.FieldData: "abc", form.FieldHashValue: "digest-of-abc", form.FieldAlgorithm: "MD5",
	})
	gen := hx.TestAction(context.Background(), f.generate, f.generate.Wire("submit", props), nil)

	assert.True(t, gen.HTMLContains(`<p class="error">Error: bad algorithm</p>`), gen.HTML)
	assert.False(t, gen.HTMLContains(`class="result"`))

	again := hx.TestAction(context.Background(), f.verify, f.verify.Wire("", props), nil)
	assert.Equal(t, ver.HTML, again.HTML)
	assert.True(t, again.HTMLContains(`banner-positive`))
}

func TestCopyFlow(t *testing.T) {
	f := newFixture(t, echoService())
	props := f.session(t)
	ctx := context.Background()

	early := hx.TestAction(ctx, f.generate, f.generate.Wire("copy", props), nil)
	assert.True(t, early.HasFlash(hx.FlashWarning, "Generate a hash first."), early.HTML)
	assert.False(t, early.HasEvent(ClipboardEvent))

	f.edit(t, props, form.FieldData, "abc")
	hx.TestAction(ctx, f.generate, f.generate.Wire("submit", props), nil)
	res := hx.TestAction(ctx, f.generate, f.generate.Wire("copy", props), nil)

	require.True(t, res.HasEvent(ClipboardEvent), res.Headers)
	detail, _ := res.TriggeredEvents[ClipboardEvent].(map[string]any)
	assert.Equal(t, "digest-of-abc", detail["text"])
	assert.True(t, res.HTMLContains(`>Copied</button>`), res.HTML)

	// A new submission resets the label.
	next := hx.TestAction(ctx, f.generate, f.generate.Wire("submit", props), nil)
	assert.True(t, next.HTMLContains(`>Copy</button>`), next.HTML)
}

func TestFieldEditsAreShared(t *testing.T) {
	f := newFixture(t, echoService())
	props := f.session(t)
	ctx := context.Background()

	res := f.edit(t, props, form.FieldAlgorithm, "SHA-512")
	assert.Empty(t, res.HTML)
	detail, _ := res.TriggeredEvents[FieldEvent].(map[string]any)
	assert.Equal(t, map[string]any{"name": form.FieldAlgorithm, "value": "SHA-512"}, detail)

	res = f.edit(t, props, form.FieldData, "hello")
	detail, _ = res.TriggeredEvents[FieldEvent].(map[string]any)
	assert.Equal(t, map[string]any{"name": form.FieldData, "value": "hello"}, detail)

	// The verify form posts every input it renders, including its own
	// untouched copy of the message.
	ver := hx.TestAction(ctx, f.verify, f.verify.Wire("submit", props), map[string]string{
		form.FieldData:      "",
		form.FieldHashValue: "digest-of-hello",
		form.FieldAlgorithm: "MD5",
	})
	assert.True(t, ver.HTMLContainsAll(`banner-positive`, "Hash matches the data."), ver.HTML)

	flow, err := f.store.Get(props.SessionID)
	require.NoError(t, err)
	payload := flow.Payload()
	assert.Equal(t, "hello", payload.Value(form.FieldData))
	assert.Equal(t, "SHA-512", payload.Value(form.FieldAlgorithm))
	assert.Equal(t, "digest-of-hello", payload.Value(form.FieldHashValue))
	_, hasProps := payload.Get("p")
	assert.False(t, hasProps)
}

func TestGenerateSubmitKeepsEditsFromVerify(t *testing.T) {
	f := newFixture(t, echoService())
	props := f.session(t)
	ctx := context.Background()

	res := hx.TestAction(ctx, f.verify, f.verify.Wire("field", props), map[string]string{form.FieldData: "xyz"})
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	gen := hx.TestAction(ctx, f.generate, f.generate.Wire("submit", props), map[string]string{
		form.FieldData:      "",
		form.FieldAlgorithm: "MD5",
	})

	assert.True(t, gen.HTMLContains(`<span class="hash">digest-of-xyz</span>`), gen.HTML)
}

func TestVerifyMismatch(t *testing.T) {
	f := newFixture(t, echoService())
	props := f.session(t)
	f.edit(t, props, form.FieldData, "abc")

	res := hx.TestAction(context.Background(), f.verify, f.verify.Wire("submit", props), map[string]string{
		form.FieldData: "abc", form.FieldHashValue: "nope",
	})

	assert.True(t, res.HTMLContainsAll(`banner-negative`, "<strong>Result:</strong> Hash does not match the data."), res.HTML)
}

func TestPanelPropsAreEncrypted(t *testing.T) {
	f := newFixture(t, echoService())
	props := f.session(t)

	attrs := f.verify.Wire("submit", props)
	vals := attrs["hx-vals"].(string)
	assert.NotContains(t, vals, ".")

	// Props that are only signed with the same key are refused.
	enc, err := hx.NewEncoder([]byte("ui-test-key"))
	require.NoError(t, err)
	signed, err := enc.Encode(props, false)
	require.NoError(t, err)
	attrs["hx-vals"] = `{"p":"` + signed + `"}`

	res := hx.TestAction(context.Background(), f.verify, attrs, nil)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestOutputIsEscaped(t *testing.T) {
	svc := echoService()
	svc.generate = func(hashapi.GenerateRequest) (hashapi.HashResult, error) {
		return hashapi.HashResult{}, &hashapi.Error{Kind: hashapi.KindServiceRejection, Message: `<script>alert(1)</script>`}
	}
	f := newFixture(t, svc)

	res := hx.TestAction(context.Background(), f.generate, f.generate.Wire("submit", f.session(t)), nil)

	assert.False(t, res.HTMLContains("<script>"))
	assert.True(t, res.HTMLContains("&lt;script&gt;"))
}

func TestExpiredSession(t *testing.T) {
	f := newFixture(t, echoService())

	res := hx.TestAction(context.Background(), f.generate, f.generate.Wire("submit", Props{SessionID: "gone"}), nil)

	assert.Equal(t, http.StatusGone, res.StatusCode)
	assert.True(t, res.HTMLContains("This page has expired"), res.HTML)
	assert.Equal(t, "closest .panel", res.Headers.Get("HX-Retarget"))
}

func TestTamperedPropsFallBack(t *testing.T) {
	f := newFixture(t, echoService())
	attrs := f.verify.Wire("submit", f.session(t))
	attrs["hx-vals"] = strings.Replace(attrs["hx-vals"].(string), `"p":"`, `"p":"x`, 1)

	res := hx.TestAction(context.Background(), f.verify, attrs, nil)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pthm/cyphergo/internal/hashapi"
	"github.com/pthm/cyphergo/internal/hx"
	"github.com/pthm/cyphergo/internal/session"
	"github.com/pthm/cyphergo/internal/ui"
	"github.com/pthm/cyphergo/internal/workflow"
)

// newHashBackend mimics the hash service: MD5 and SHA-256 of "abc" are
// known, anything else is rejected.
func newHashBackend(t *testing.T) *httptest.Server {
	t.Helper()
	digests := map[string]string{
		"MD5":     "900150983cd24fb0d6963f7d28e17f72",
		"SHA-256": "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/generate-hash", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req["data"] != "abc" || digests[req["algorithm"]] == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"detail":"Unsupported hashing algorithm."}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"algorithm": req["algorithm"], "hash_value": digests[req["algorithm"]]})
	})
	mux.HandleFunc("/verify-hash", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		ok := req["data"] == "abc" && digests[req["algorithm"]] == req["hash_value"]
		msg := "Hash does not match the data."
		if ok {
			msg = "Hash matches the data."
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"is_valid": ok, "message": msg})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T) *httptest.Server {
	t.Helper()
	backend := newHashBackend(t)

	client, err := hashapi.NewClient(backend.URL, hashapi.WithTimeout(time.Second))
	require.NoError(t, err)

	store := session.NewStore(time.Minute, func() *workflow.Orchestrator { return workflow.New(client) })
	reg, err := hx.NewRegistry([]byte("server-test-key"), zap.NewNop())
	require.NoError(t, err)
	reg.OnError = ui.ErrorHandler(reg.OnError)

	gen, ver := ui.NewGeneratePanel(store), ui.NewVerifyPanel(store)
	reg.Add(gen, ver)
	pages := ui.NewPages(store, gen, ver, zap.NewNop())

	app := httptest.NewServer(NewRouter(pages, reg, zap.NewNop()))
	t.Cleanup(app.Close)
	return app
}

func get(t *testing.T, rawURL string) (int, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, rawURL string, form url.Values, htmx bool) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

var formRe = regexp.MustCompile(`<form hx-post="([^"]+)" hx-swap="outerHTML" hx-sync="this:queue all" hx-target="#[a-z-]+" hx-vals="\{&#34;p&#34;:&#34;([^&]+)&#34;\}"`)

// panelForms returns the submit path and sealed props of each form on the
// Hashing page, generate first.
func panelForms(t *testing.T, page string) [][2]string {
	t.Helper()
	matches := formRe.FindAllStringSubmatch(page, -1)
	require.Len(t, matches, 2, page)
	return [][2]string{{matches[0][1], matches[0][2]}, {matches[1][1], matches[1][2]}}
}

// edit posts one field edit for the form, as its inputs do.
func edit(t *testing.T, app string, form [2]string, name, value string) {
	t.Helper()
	status, _ := post(t, app+strings.Replace(form[0], "/submit", "/field", 1), url.Values{
		"p": {form[1]}, name: {value},
	}, true)
	require.Equal(t, http.StatusNoContent, status)
}

func TestHomeAndHealth(t *testing.T) {
	app := newApp(t)

	status, body := get(t, app.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Hashing APIs")

	status, body = get(t, app.URL+HealthPath)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, _ = get(t, app.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHashingRoundTrip(t *testing.T) {
	app := newApp(t)

	status, page := get(t, app.URL+ui.HashingPath)
	require.Equal(t, http.StatusOK, status)
	forms := panelForms(t, page)
	generate, verify := forms[0], forms[1]
	assert.Contains(t, generate[0], "/_c/generate-")
	assert.Contains(t, verify[0], "/_c/verify-")

	edit(t, app.URL, generate, "data", "abc")
	edit(t, app.URL, generate, "algorithm", "SHA-256")
	status, body := post(t, app.URL+generate[0], url.Values{
		"p": {generate[1]}, "data": {"abc"}, "algorithm": {"SHA-256"},
	}, true)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	assert.Contains(t, body, "<strong>Algorithm:</strong> SHA-256")

	status, body = post(t, app.URL+verify[0], url.Values{
		"p": {verify[1]}, "data": {""}, "algorithm": {"SHA-256"},
		"hash_value": {"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}, true)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "banner-positive")
	assert.Contains(t, body, "Hash matches the data.")

	edit(t, app.URL, verify, "algorithm", "SHA-512")
	status, body = post(t, app.URL+generate[0], url.Values{
		"p": {generate[1]}, "data": {"abc"}, "algorithm": {"SHA-256"},
	}, true)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Error: Unsupported hashing algorithm.")
}

func TestComponentPostsRequireHTMX(t *testing.T) {
	app := newApp(t)
	_, page := get(t, app.URL+ui.HashingPath)
	generate := panelForms(t, page)[0]

	status, _ := post(t, app.URL+generate[0], url.Values{"p": {generate[1]}, "data": {"abc"}}, false)

	assert.Equal(t, http.StatusForbidden, status)
}

func TestPagesAreIsolated(t *testing.T) {
	app := newApp(t)
	_, first := get(t, app.URL+ui.HashingPath)
	_, second := get(t, app.URL+ui.HashingPath)
	a, b := panelForms(t, first)[0], panelForms(t, second)[0]
	require.NotEqual(t, a[1], b[1])

	edit(t, app.URL, a, "data", "abc")
	edit(t, app.URL, b, "data", "xyz")

	_, body := post(t, app.URL+a[0], url.Values{"p": {a[1]}}, true)
	assert.Contains(t, body, "900150983cd24fb0d6963f7d28e17f72")

	_, body = post(t, app.URL+b[0], url.Values{"p": {b[1]}}, true)
	assert.Contains(t, body, "Error:")
	assert.NotContains(t, body, "900150983cd24fb0d6963f7d28e17f72")
}

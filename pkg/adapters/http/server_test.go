package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/aretw0/switchyard/pkg/adapters/http"
	"github.com/aretw0/switchyard/pkg/adapters/memory"
	"github.com/aretw0/switchyard/pkg/graph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const door = `
name: door
states:
  - {name: closed, value: 0}
  - {name: open, value: 1}
transitions:
  - {from: closed, resolver: knock}
  - {from: open, to: closed}
resolvers:
  - id: knock
    params: [key]
    branches:
      - {when: key, to: open, note: unlocked}
      - {end: true}
`

func newHandler(t *testing.T, opts ...api.Option) http.Handler {
	t.Helper()
	catalog, err := memory.NewCatalogFromYAML(map[string]string{"door": door})
	require.NoError(t, err)
	h, err := api.NewHandler(catalog, opts...)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_Health(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Machines(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodGet, "/machines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"machines":["door"]}`, rec.Body.String())
}

func TestServer_Graph(t *testing.T) {
	h := newHandler(t)

	rec := do(t, h, http.MethodGet, "/machines/door/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "graph TD"))
	assert.Contains(t, rec.Body.String(), `resolver_knock{{"knock"}}`)

	rec = do(t, h, http.MethodGet, "/machines/door/graph?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	g := decode[graph.Graph](t, rec)
	assert.Equal(t, "door", g.Name)
	assert.NotEmpty(t, g.Edges)

	rec = do(t, h, http.MethodGet, "/machines/door/graph?format=png", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/machines/missing/graph", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SessionLifecycle(t *testing.T) {
	h := newHandler(t)

	rec := do(t, h, http.MethodPost, "/machines/door/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s := decode[api.Session](t, rec)
	assert.Equal(t, "door", s.Machine)
	assert.Equal(t, "closed", s.State)
	assert.Equal(t, float64(0), s.Value)
	assert.True(t, s.Started)
	assert.False(t, s.Finished)
	base := "/sessions/" + s.ID

	rec = do(t, h, http.MethodPost, base+"/advance", `{"named":{"key":true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "open", decode[api.Session](t, rec).State)

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "open", decode[api.Session](t, rec).State)

	rec = do(t, h, http.MethodPost, base+"/assign", `{"state":"closed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "closed", decode[api.Session](t, rec).State)

	rec = do(t, h, http.MethodPost, base+"/assign", `{"value":1,"silent":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "open", decode[api.Session](t, rec).State)

	rec = do(t, h, http.MethodPost, base+"/advance", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "closed", decode[api.Session](t, rec).State)

	// No key: knock falls through to End.
	rec = do(t, h, http.MethodPost, base+"/advance", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s = decode[api.Session](t, rec)
	assert.True(t, s.Finished)
	assert.Empty(t, s.State)

	rec = do(t, h, http.MethodPost, base+"/advance", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":["`+s.ID+`"]}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DeferredStart(t *testing.T) {
	h := newHandler(t)

	rec := do(t, h, http.MethodPost, "/machines/door/sessions", `{"start":false}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s := decode[api.Session](t, rec)
	assert.False(t, s.Started)
	assert.Empty(t, s.State)

	rec = do(t, h, http.MethodPost, "/sessions/"+s.ID+"/advance", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_Errors(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/machines/door/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/sessions/" + decode[api.Session](t, rec).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed session id", http.MethodGet, "/sessions/not-a-uuid", "", http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/sessions/6f1c7b52-4b8e-4d6c-9a51-2f0f3d2a9e11", "", http.StatusNotFound},
		{"unknown machine", http.MethodPost, "/machines/missing/sessions", "", http.StatusNotFound},
		{"unknown field", http.MethodPost, base + "/advance", `{"foo":1}`, http.StatusBadRequest},
		{"ambiguous assign", http.MethodPost, base + "/assign", `{"state":"open","end":true}`, http.StatusBadRequest},
		{"empty assign", http.MethodPost, base + "/assign", `{}`, http.StatusBadRequest},
		{"unknown state", http.MethodPost, base + "/assign", `{"state":"ajar"}`, http.StatusUnprocessableEntity},
		{"undeclared value", http.MethodPost, base + "/assign", `{"value":7}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[api.Error](t, rec).Error)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	h := newHandler(t, api.WithMetrics(prometheus.NewRegistry()))

	rec := do(t, h, http.MethodPost, "/machines/door/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[api.Session](t, rec).ID
	rec = do(t, h, http.MethodPost, "/sessions/"+id+"/advance", `{"args":[true]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `switchyard_transitions_total{from="closed",machine="door",to="open"} 1`)
}

func TestServer_OpenAPIDocument(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(api.Spec()), rec.Body.String())
}

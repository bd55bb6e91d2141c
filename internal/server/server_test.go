package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tracegraph/pkg/cache"
	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/pipeline"
	"github.com/matzehuels/tracegraph/pkg/transform"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	srv := httptest.NewServer(New(pipeline.NewRunner(c, nil, logger), logger, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func convnetBody(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/convnet.json")
	require.NoError(t, err)
	return data
}

func post(t *testing.T, url, contentType string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func requireOK(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err, "X-Request-Id should be a UUID")

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t, Options{})
	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"valid uuid kept", "4f0b2a3c-5d1e-4a8b-9c7d-0e1f2a3b4c5d", true},
		{"garbage replaced", "not-a-uuid", false},
		{"missing assigned", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
			if tt.in != "" {
				req.Header.Set(HeaderRequestID, tt.in)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			got := resp.Header.Get(HeaderRequestID)
			assert.Equal(t, tt.keep, got == tt.in, "X-Request-Id = %q (sent %q)", got, tt.in)
			_, err = uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}

func TestRules(t *testing.T) {
	srv := newTestServer(t, Options{Rules: []transform.Rule{transform.MustRename("Relu", "ReLU")}})
	resp, err := http.Get(srv.URL + "/v1/rules")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Rules []ruleResponse `json:"rules"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Rules, 5)
	assert.Equal(t, "onnx::(.*)", body.Rules[0].Op)
	assert.Equal(t, "ReLU", body.Rules[4].To)
}

func TestCreateGraphJSON(t *testing.T) {
	srv := newTestServer(t, Options{})
	resp := post(t, srv.URL+"/v1/graphs?input_names=pixels", "application/json", convnetBody(t))

	requireOK(t, resp)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
	assert.NotEmpty(t, resp.Header.Get("X-Graph-Hash"))

	var g struct {
		Meta  map[string]any `json:"meta"`
		Nodes []struct {
			Op   string `json:"op"`
			Name string `json:"name"`
		} `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))
	require.Len(t, g.Nodes, 6)
	assert.Len(t, g.Edges, 5)
	assert.Equal(t, "pixels", g.Nodes[0].Name)
	assert.Equal(t, "Linear", g.Nodes[5].Op)
	assert.Equal(t, []any{"pixels"}, g.Meta["input_names"])
}

func TestCreateGraphCached(t *testing.T) {
	srv := newTestServer(t, Options{})
	url := srv.URL + "/v1/graphs?format=dot&detailed=true"

	first := post(t, url, "application/json", convnetBody(t))
	second := post(t, url, "application/json", convnetBody(t))
	requireOK(t, first)
	requireOK(t, second)
	assert.Equal(t, "hit", second.Header.Get("X-Cache"))
	assert.True(t, strings.HasPrefix(second.Header.Get("Content-Type"), "text/vnd.graphviz"))

	a, _ := io.ReadAll(first.Body)
	b, _ := io.ReadAll(second.Body)
	assert.Contains(t, string(a), "digraph G")
	assert.Equal(t, a, b, "cached DOT should equal the first response")
}

func TestCreateGraphYAML(t *testing.T) {
	srv := newTestServer(t, Options{})
	body := []byte(`
operators:
  - kind: onnx::Relu
    scope: Net
    inputs: [0]
    outputs:
      - id: 1
        repr: "%1 : Float(1, 4) = onnx::Relu(%0)"
`)
	resp := post(t, srv.URL+"/v1/graphs", "application/yaml", body)
	requireOK(t, resp)
}

func TestCreateGraphKeepsDuplicateIDs(t *testing.T) {
	srv := newTestServer(t, Options{})
	body := `{"operators": [{"kind": "prim::Print", "scope": "Net"}, {"kind": "prim::Print", "scope": "Net"}]}`
	resp := post(t, srv.URL+"/v1/graphs", "application/json", []byte(body))
	requireOK(t, resp)

	var g struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "Net/outputs/", g.Nodes[0].ID)
	assert.Equal(t, "Net/outputs/#1", g.Nodes[1].ID)
}

func TestCreateGraphErrors(t *testing.T) {
	srv := newTestServer(t, Options{MaxBodyBytes: 4096})
	gemm := `{"operators": [{"kind": "onnx::Gemm", "scope": "Net", "outputs": [{"id": 1, "repr": "x"}], "repr": "onnx::Gemm(%0)"}]}`

	tests := []struct {
		name   string
		query  string
		ct     string
		body   string
		status int
		code   errors.Code
	}{
		{"bad format", "?format=png", "application/json", `{"operators": []}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad bool", "?indexed=maybe", "application/json", `{"operators": []}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad input name", "?input_names=a,,b", "application/json", `{"operators": []}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty body", "", "application/json", ``, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed", "", "application/json", `{"operators": [`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"too large", "", "application/json", `{"x": "` + strings.Repeat("a", 5000) + `"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"gemm attributes", "", "application/json", gemm, http.StatusUnprocessableEntity, errors.ErrCodeInvalidAttributes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/graphs"+tt.query, tt.ct, []byte(tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			e := body["error"]
			assert.Equal(t, tt.code, e.Code, e.Message)
			assert.Equal(t, resp.Header.Get(HeaderRequestID), e.RequestID)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidRule, http.StatusBadRequest},
		{errors.ErrCodeInvalidTrace, http.StatusUnprocessableEntity},
		{errors.ErrCodeFileNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusUnsupportedMediaType},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.code), "statusFor(%q)", tt.code)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "ListenAndServe() after shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RatePerSecond = 0
	if mutate != nil {
		mutate(&cfg)
	}
	return server.New(cfg, nil, nil).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func exprJSON(e gosolve.Expr) map[string]interface{} { return gosolve.ToJSONValue(e) }

var x = gosolve.S("x")

func TestHealth(t *testing.T) {
	w := do(t, newServer(t, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRequestID_Propagated(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	newServer(t, nil).ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}

func TestSchema(t *testing.T) {
	w := do(t, newServer(t, nil), http.MethodGet, "/v1/schema", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"solve_inequality"`)
}

func TestSolve_Linear(t *testing.T) {
	body := map[string]interface{}{
		"var":   "x",
		"left":  exprJSON(gosolve.AddOf(gosolve.MulOf(gosolve.N(2), x), gosolve.N(3))),
		"right": exprJSON(gosolve.N(7)),
	}
	w := do(t, newServer(t, nil), http.MethodPost, "/v1/solve", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)["result"].(map[string]interface{})
	assert.Equal(t, "solved", res["status"])
	sols := res["solutions"].([]interface{})
	require.Len(t, sols, 1)
	assert.Equal(t, "2", sols[0].(map[string]interface{})["string"])
}

func TestSolve_SharedSolveIgnoresCallerCancel(t *testing.T) {
	body := map[string]interface{}{
		"var":   "x",
		"left":  exprJSON(gosolve.AddOf(gosolve.MulOf(gosolve.N(2), x), gosolve.N(3))),
		"right": exprJSON(gosolve.N(7)),
	}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", &buf).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newServer(t, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)["result"].(map[string]interface{})
	assert.Equal(t, "solved", res["status"])
}

func TestSolve_GuessesVariable(t *testing.T) {
	body := map[string]interface{}{
		"left":  exprJSON(gosolve.SubOf(gosolve.S("t"), gosolve.N(4))),
		"right": exprJSON(gosolve.N(0)),
	}
	w := do(t, newServer(t, nil), http.MethodPost, "/v1/solve", body)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)["result"].(map[string]interface{})
	assert.Equal(t, "t", res["var"])
}

func TestSolve_Inequality(t *testing.T) {
	body := map[string]interface{}{
		"var":        "x",
		"left":       exprJSON(gosolve.SubOf(gosolve.PowOf(x, gosolve.N(2)), gosolve.N(1))),
		"right":      exprJSON(gosolve.N(0)),
		"comparison": ">",
	}
	w := do(t, newServer(t, nil), http.MethodPost, "/v1/solve", body)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)["result"].(map[string]interface{})
	rs := res["restrictions"].([]interface{})
	require.Len(t, rs, 1)
	assert.Equal(t, "x < -1 or x > 1", rs[0].(map[string]interface{})["string"])
}

func TestSolve_BadRequest(t *testing.T) {
	h := newServer(t, nil)
	w := do(t, h, http.MethodPost, "/v1/solve", map[string]interface{}{"var": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/v1/solve", map[string]interface{}{
		"left":  map[string]interface{}{"type": "bogus"},
		"right": exprJSON(gosolve.N(0)),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/v1/solve", map[string]interface{}{
		"left":       exprJSON(x),
		"right":      exprJSON(gosolve.N(0)),
		"comparison": "~",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSolveBatch_PreservesOrder(t *testing.T) {
	eq := func(k int64) map[string]interface{} {
		return map[string]interface{}{
			"var":   "x",
			"left":  exprJSON(gosolve.SubOf(x, gosolve.N(k))),
			"right": exprJSON(gosolve.N(0)),
		}
	}
	body := map[string]interface{}{"equations": []interface{}{eq(1), eq(2), eq(3)}}
	w := do(t, newServer(t, nil), http.MethodPost, "/v1/solve/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	results := decode(t, w)["results"].([]interface{})
	require.Len(t, results, 3)
	for i, r := range results {
		sols := r.(map[string]interface{})["solutions"].([]interface{})
		require.Len(t, sols, 1)
		assert.Equal(t, []string{"1", "2", "3"}[i], sols[0].(map[string]interface{})["string"])
	}
}

func TestSolveBatch_TooLarge(t *testing.T) {
	h := newServer(t, func(c *config.Config) { c.Server.MaxBatch = 1 })
	one := map[string]interface{}{"left": exprJSON(x), "right": exprJSON(gosolve.N(0))}
	w := do(t, h, http.MethodPost, "/v1/solve/batch", map[string]interface{}{"equations": []interface{}{one, one}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDomain(t *testing.T) {
	body := map[string]interface{}{
		"var":  "x",
		"expr": exprJSON(gosolve.DivOf(gosolve.N(1), gosolve.SubOf(x, gosolve.N(3)))),
	}
	w := do(t, newServer(t, nil), http.MethodPost, "/v1/domain", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dom := decode(t, w)["domain"].(map[string]interface{})
	assert.Equal(t, "x != 3", dom["string"])
}

func TestTool_Simplify(t *testing.T) {
	body := map[string]interface{}{
		"tool":   "simplify",
		"params": map[string]interface{}{"expr": exprJSON(gosolve.AddOf(x, x))},
	}
	w := do(t, newServer(t, nil), http.MethodPost, "/v1/tool", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2*x", decode(t, w)["string"])
}

func TestTool_Unknown(t *testing.T) {
	w := do(t, newServer(t, nil), http.MethodPost, "/v1/tool", map[string]interface{}{"tool": "nope"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["error"], "unknown tool")
}

func TestRateLimit(t *testing.T) {
	h := newServer(t, func(c *config.Config) {
		c.Server.RatePerSecond = 0.001
		c.Server.Burst = 1
	})
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/v1/schema", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/v1/schema", nil).Code)
	// /health is outside the limited group.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil).Code)
}

func TestMetrics(t *testing.T) {
	h := newServer(t, nil)
	do(t, h, http.MethodGet, "/health", nil)
	w := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gosolve_http_requests_total")
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-stats-service/internal/handler"
	"github.com/maxviazov/cricket-stats-service/internal/intent"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

// stubQuery echoes the question so tests can see what reached the service.
type stubQuery struct {
	got      []string
	deadline bool
}

func (s *stubQuery) Answer(ctx context.Context, q string) string {
	s.got = append(s.got, q)
	_, s.deadline = ctx.Deadline()
	return "answer to " + q
}

func newEngine(p handler.Pinger, q *stubQuery, opts handler.Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return handler.NewRouter(p, q, opts, zerolog.New(io.Discard))
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	ok := newEngine(stubPinger{}, &stubQuery{}, handler.Options{})
	down := newEngine(stubPinger{err: errors.New("db down")}, &stubQuery{}, handler.Options{})

	assert.Equal(t, http.StatusOK, do(ok, http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusOK, do(ok, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(ok, http.MethodGet, handler.APIV1Prefix+"/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(down, http.MethodGet, "/live", "").Code)

	w := do(down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "db down")
}

func TestQuery_Post(t *testing.T) {
	q := &stubQuery{}
	r := newEngine(stubPinger{}, q, handler.Options{RequestTimeout: time.Second})

	w := do(r, http.MethodPost, handler.APIV1Prefix+handler.QueryPath, `{"query":"Who took the most wickets?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Query  string `json:"query"`
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Who took the most wickets?", body.Query)
	assert.Equal(t, "answer to Who took the most wickets?", body.Answer)
	assert.True(t, q.deadline)
}

// waitingQuery answers only once the request context gives up.
type waitingQuery struct{}

func (waitingQuery) Answer(ctx context.Context, q string) string {
	<-ctx.Done()
	return "Error executing query: " + ctx.Err().Error()
}

func TestQuery_DeadlineStillAnswersWithText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := handler.NewRouter(stubPinger{}, waitingQuery{}, handler.Options{RequestTimeout: 20 * time.Millisecond}, zerolog.New(io.Discard))

	w := do(r, http.MethodPost, handler.APIV1Prefix+handler.QueryPath, `{"query":"best bowler"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Query  string `json:"query"`
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "best bowler", body.Query)
	assert.Equal(t, "Error executing query: context deadline exceeded", body.Answer)
}

func TestQuery_Get(t *testing.T) {
	q := &stubQuery{}
	r := newEngine(stubPinger{}, q, handler.Options{})

	w := do(r, http.MethodGet, handler.APIV1Prefix+handler.QueryPath+"?q=best+chase", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"best chase"}, q.got)
	assert.False(t, q.deadline)
}

func TestQuery_MalformedBody(t *testing.T) {
	q := &stubQuery{}
	r := newEngine(stubPinger{}, q, handler.Options{})

	w := do(r, http.MethodPost, handler.APIV1Prefix+handler.QueryPath, `{"query":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_input")
	assert.Empty(t, q.got)
}

func TestQuery_Examples(t *testing.T) {
	r := newEngine(stubPinger{}, &stubQuery{}, handler.Options{})
	w := do(r, http.MethodGet, handler.APIV1Prefix+handler.QueryPath+"/examples", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Examples []string `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, intent.Examples, body.Examples)
}

func TestQuery_RateLimited(t *testing.T) {
	r := newEngine(stubPinger{}, &stubQuery{}, handler.Options{
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Hour,
	})
	path := handler.APIV1Prefix + handler.QueryPath + "?q=x"

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, path, "").Code)
	w := do(r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	// health stays outside the limiter
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/live", "").Code)
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine(stubPinger{}, &stubQuery{}, handler.Options{AllowOrigins: []string{"https://stats.example.org"}})

	req := httptest.NewRequest(http.MethodOptions, handler.APIV1Prefix+handler.QueryPath, nil)
	req.Header.Set("Origin", "https://stats.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://stats.example.org", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDocs(t *testing.T) {
	r := newEngine(stubPinger{}, &stubQuery{}, handler.Options{})

	w := do(r, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "openapi: 3"))

	w = do(r, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/openapi.yaml")
}

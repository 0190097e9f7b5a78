package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newRouter(called *bool) http.Handler {
	r := chi.NewRouter()
	r.Use(CORS())
	r.With(JSON, BodyLimit(16)).Post("/execute", func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestCORSPreflight(t *testing.T) {
	var called bool
	r := newRouter(&called)

	req := httptest.NewRequest(http.MethodOptions, "/execute", nil)
	req.Header.Set("Origin", "https://editor.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type, apikey")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Body.String())
	assert.False(t, called)
}

func TestBareOptions(t *testing.T) {
	var called bool
	r := newRouter(&called)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/execute", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "x-client-info")
	assert.Empty(t, rr.Body.String())
	assert.False(t, called)
}

func TestCORSOnActualRequest(t *testing.T) {
	var called bool
	r := newRouter(&called)

	req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{}`))
	req.Header.Set("Origin", "https://editor.example")
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, called)
}

func TestJSONRejectsOtherContentTypes(t *testing.T) {
	var called bool
	r := newRouter(&called)

	req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	assert.JSONEq(t, `{"error":"Content-Type must be application/json"}`, rr.Body.String())
	assert.False(t, called)
}

func TestBodyLimit(t *testing.T) {
	var called bool
	r := newRouter(&called)

	req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{"code":"`+strings.Repeat("x", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.False(t, called)
}

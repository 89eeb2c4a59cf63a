package respcache

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(&nopWriter{}, nil))
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestMiddlewareServesSecondRequestFromCache(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK"}`))
	})

	wrapped := Middleware(New(8, time.Minute), discard())(handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/apielec/getDataById?id=100", nil)
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, `{"status":"OK"}`, rr.Body.String())
		require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	}
	require.Equal(t, 1, calls)
}

func TestMiddlewareDifferentKeysDoNotCollide(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(r.URL.RawQuery))
	})

	wrapped := Middleware(New(8, time.Minute), discard())(handler)

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, httptest.NewRequest("GET", "/apielec/getDataById?id=100", nil))
	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, httptest.NewRequest("GET", "/apielec/getDataById?id=101", nil))

	require.Equal(t, 2, calls)
	require.NotEqual(t, first.Body.String(), second.Body.String())
}

func TestMiddlewareDoesNotCacheFailures(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	wrapped := Middleware(New(8, time.Minute), discard())(handler)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, httptest.NewRequest("GET", "/apielec/getData", nil))
		require.Equal(t, http.StatusBadRequest, rr.Code)
	}
	require.Equal(t, 2, calls)
}

func TestMiddlewareBadBodyIsKeyError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the key cannot be derived")
	})

	wrapped := Middleware(New(8, time.Minute), discard())(handler)

	req := httptest.NewRequest("POST", "/apielec/getDataById", &failingBody{})
	req.ContentLength = 4
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "cache_key_error")
}

type failingBody struct{}

func (*failingBody) Read(p []byte) (int, error) { return 0, errors.New("broken body") }

func (*failingBody) Close() error { return nil }

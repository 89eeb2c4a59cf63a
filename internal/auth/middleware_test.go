package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	store := &fakeCredStore{users: map[string]string{"rick": sha256Hex("morty")}}
	svc := NewService(store, "test-secret")
	token, err := svc.Login(context.Background(), "rick", "morty")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return svc, token
}

func TestMiddlewareMissingToken(t *testing.T) {
	svc, _ := newTestService(t)
	handler := Middleware(svc, "SESSION")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/apielec/getData", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "missing_credential" {
		t.Fatalf("message = %v, want missing_credential", body["message"])
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	svc, _ := newTestService(t)
	handler := Middleware(svc, "SESSION")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/apielec/getData", nil)
	req.Header.Set("SESSION", "not-a-real-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotAcceptable {
		t.Fatalf("status = %d, want 406", rr.Code)
	}
}

func TestMiddlewareValidToken(t *testing.T) {
	svc, token := newTestService(t)
	called := false
	handler := Middleware(svc, "SESSION")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/apielec/getData", nil)
	req.Header.Set("SESSION", token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatal("handler did not run")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestMiddlewareCustomHeaderName(t *testing.T) {
	svc, token := newTestService(t)
	handler := Middleware(svc, "X-Api-Session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/apielec/ping", nil)
	req.Header.Set("SESSION", token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("token in wrong header: status = %d, want 405", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/apielec/ping", nil)
	req.Header.Set("X-Api-Session", token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

package auth

import (
	"encoding/json"
	"net/http"
)

// Middleware gates every data-returning route on the session header.
// Status codes mirror the original API contract: 405 when the header is
// absent, 406 when the token was never issued by this process.
func Middleware(svc *Service, header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(header)
			if token == "" {
				writeDenied(w, http.StatusMethodNotAllowed, "missing_credential")
				return
			}
			if !svc.TokenValid(token) {
				writeDenied(w, http.StatusNotAcceptable, "invalid_credential")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeDenied(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ERROR",
		"statusCode": status,
		"message":    code,
	})
}

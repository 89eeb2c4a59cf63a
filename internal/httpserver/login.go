package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"apielec/internal/auth"
)

// loginResponse tells the client how to present the token on later
// calls; the header name follows the server configuration.
type loginResponse struct {
	AuthorizationType string `json:"Authorization_type"`
	Key               string `json:"Key"`
	In                string `json:"In"`
	ValueToken        string `json:"value_token"`
}

func loginHandler(svc *auth.Service, sessionHeader string, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			writeLoginRejected(w)
			return
		}

		token, err := svc.Login(r.Context(), username, password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeLoginRejected(w)
				return
			}
			logger.Error("login failed", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{
			AuthorizationType: "API Key",
			Key:               sessionHeader,
			In:                "header",
			ValueToken:        token,
		})
	})
}

func writeLoginRejected(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Login Required"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ERROR",
		"statusCode": http.StatusUnauthorized,
		"message":    "Invalid user and/or password",
	})
}

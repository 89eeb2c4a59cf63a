package httpserver

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"apielec/internal/auth"
	"apielec/internal/consumption"
	"apielec/internal/metrics"
	"apielec/internal/respcache"
)

// NewRouter composes the chain per route: authenticate, then cache
// lookup, then the handler. Each stage short-circuits on failure.
func NewRouter(
	logger *slog.Logger,
	authSvc *auth.Service,
	store consumption.Querier,
	cache *respcache.Cache,
	sessionHeader string,
) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.Handle("/metrics", metrics.Handler())

	// Auth
	mux.Handle("/login", loginHandler(authSvc, sessionHeader, logger))

	secured := auth.Middleware(authSvc, sessionHeader)
	cached := respcache.Middleware(cache, logger)

	mux.Handle("/apielec/ping", secured(&consumption.PingHandler{Logger: logger}))
	mux.Handle("/apielec/getData",
		secured(cached(&consumption.AllHandler{Store: store, Logger: logger})))
	mux.Handle("/apielec/getDataById",
		secured(cached(&consumption.ByIDHandler{Store: store, Logger: logger})))
	mux.Handle("/apielec/getDataByDate",
		secured(cached(&consumption.ByDateHandler{Store: store, Logger: logger})))
	mux.Handle("/apielec/getDataByRange",
		secured(cached(&consumption.ByRangeHandler{Store: store, Logger: logger})))

	return withRequestID(logger, mux)
}

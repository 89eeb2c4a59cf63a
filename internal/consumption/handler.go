package consumption

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"apielec/internal/metrics"
)

// Querier is the read contract the handlers need; the router wires in
// *Store, tests wire in fakes.
type Querier interface {
	Columns() []string
	All(ctx context.Context) ([][]string, error)
	ByID(ctx context.Context, idList string) ([][]string, error)
	ByDate(ctx context.Context, pattern string) ([][]string, error)
	ByRange(ctx context.Context, start, end string) ([][]string, error)
}

type PingHandler struct {
	Logger *slog.Logger
}

func (h *PingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	WriteJSON(w, http.StatusOK, FormatMessage("I'm here!!"))
}

type AllHandler struct {
	Store  Querier
	Logger *slog.Logger
}

func (h *AllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	rows, err := h.Store.All(r.Context())
	respondRows(w, h.Logger, h.Store, "getData", rows, err, start)
}

type ByIDHandler struct {
	Store  Querier
	Logger *slog.Logger
}

func (h *ByIDHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	idList := r.URL.Query().Get("id")
	if idList == "" {
		WriteError(w, http.StatusBadRequest, "invalid_argument")
		return
	}
	start := time.Now()
	rows, err := h.Store.ByID(r.Context(), idList)
	respondRows(w, h.Logger, h.Store, "getDataById", rows, err, start)
}

type ByDateHandler struct {
	Store  Querier
	Logger *slog.Logger
}

func (h *ByDateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		WriteError(w, http.StatusBadRequest, "invalid_argument")
		return
	}
	start := time.Now()
	rows, err := h.Store.ByDate(r.Context(), date)
	respondRows(w, h.Logger, h.Store, "getDataByDate", rows, err, start)
}

type ByRangeHandler struct {
	Store  Querier
	Logger *slog.Logger
}

func (h *ByRangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	date := q.Get("date")
	endDate := q.Get("end_date")
	if date == "" || endDate == "" {
		WriteError(w, http.StatusBadRequest, "invalid_argument")
		return
	}
	start := time.Now()
	rows, err := h.Store.ByRange(r.Context(), date, endDate)
	respondRows(w, h.Logger, h.Store, "getDataByRange", rows, err, start)
}

func respondRows(w http.ResponseWriter, logger *slog.Logger, store Querier, op string, rows [][]string, err error, start time.Time) {
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			WriteError(w, http.StatusBadRequest, "invalid_argument")
			return
		}
		logger.Error("query failed", "op", op, "err", err)
		WriteError(w, http.StatusBadRequest, "query_failure")
		return
	}
	metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	env, err := FormatRows(store.Columns(), rows)
	if err != nil {
		logger.Error("format failed", "op", op, "err", err)
		WriteError(w, http.StatusInternalServerError, "format_failure")
		return
	}
	WriteJSON(w, http.StatusOK, env)
}

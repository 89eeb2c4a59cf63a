package consumption

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type Values struct {
	NumRecs int                 `json:"numrecs"`
	Records []map[string]string `json:"records"`
}

// Envelope is the wire shape of every successful response.
type Envelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Values     Values `json:"values"`
}

var ErrFormat = errors.New("row does not match column schema")

// FormatRows zips each row tuple into a record keyed by column name.
// An arity mismatch aborts the whole envelope; a partial one is never
// returned. Zero rows from a row query get the "No data found" message.
func FormatRows(columns []string, rows [][]string) (*Envelope, error) {
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: %d values for %d columns", ErrFormat, len(row), len(columns))
		}
		rec := make(map[string]string, len(columns))
		for i, col := range columns {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
	msg := ""
	if len(rows) == 0 {
		msg = "No data found"
	}
	return &Envelope{
		Status:     "OK",
		StatusCode: http.StatusOK,
		Message:    msg,
		Values:     Values{NumRecs: len(rows), Records: records},
	}, nil
}

// FormatMessage builds an envelope with no records, keeping the caller's
// message even though the record list is empty.
func FormatMessage(msg string) *Envelope {
	return &Envelope{
		Status:     "OK",
		StatusCode: http.StatusOK,
		Message:    msg,
		Values:     Values{NumRecs: 0, Records: []map[string]string{}},
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError sends the minimal-detail error body. The message carries a
// stable code from the error taxonomy, never driver or runtime text.
func WriteError(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, map[string]any{
		"status":     "ERROR",
		"statusCode": status,
		"message":    code,
	})
}

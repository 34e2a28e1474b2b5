package payload

import (
	"encoding/json"
	"io"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// ErrorResponse is the single object emitted in place of results on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteResults writes records as a JSON array. nil is written as [].
func WriteResults(w io.Writer, records []domain.PredictionRecord) error {
	if records == nil {
		records = []domain.PredictionRecord{}
	}
	return json.NewEncoder(w).Encode(records)
}

// WriteError writes {"error": msg}.
func WriteError(w io.Writer, err error) error {
	return json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

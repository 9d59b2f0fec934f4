// Package rest exposes the query API of the read layer over HTTP.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

// writeFault maps a domain fault to an HTTP status. Validation faults
// are the caller's problem; everything else is ours.
func writeFault(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := fault.KindOf(err)
	status := http.StatusInternalServerError
	if kind == fault.KindValidation {
		status = http.StatusBadRequest
	}
	writeJSON(w, logger, status, errorBody{Error: err.Error(), Kind: string(kind)})
}

func writeNotFound(w http.ResponseWriter, logger *slog.Logger, msg string) {
	writeJSON(w, logger, http.StatusNotFound, errorBody{Error: msg})
}

package ui

import (
	"encoding/json"
	"net/http"

	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
)

// apiError is the JSON error envelope of the API.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("encoding response: %v", err)
	}
}

// writeError maps domain error codes onto HTTP statuses.
func (a *App) writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case "NO_DATA", "WEEK_NOT_FOUND":
		status = http.StatusNotFound
	case "MAPPING_NOT_LOADED", "FILE_INVALID", "COLUMNS_MISSING":
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	}
	a.writeJSON(w, status, apiError{Error: err.Error(), Code: code})
}

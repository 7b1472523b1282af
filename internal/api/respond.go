package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"talent-pipeline/internal/directory"
	"talent-pipeline/internal/membership"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string                `json:"error"`
	Conflicts []membership.Conflict `json:"conflicts,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func respondCSV(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// respondError maps directory errors to HTTP statuses. Anything unexpected
// is logged and reported as a bare 500.
func (a *API) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *directory.ConflictError
	switch {
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Conflicts: conflict.Conflicts})
	case errors.Is(err, directory.ErrValidation):
		respondMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, directory.ErrNotFound):
		respondMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, directory.ErrDuplicateTenant):
		respondMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, directory.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, directory.ErrReadOnlyTenant):
		respondMessage(w, http.StatusForbidden, err.Error())
	default:
		a.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a bounded JSON body into v and answers 400 itself when
// the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		respondMessage(w, http.StatusBadRequest, "bad request body")
		return false
	}
	return true
}

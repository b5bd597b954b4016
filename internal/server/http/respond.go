package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"microblog/internal/errs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Error: message})
}

// respondDomainErr maps domain errors onto HTTP statuses. Anything
// unrecognized becomes an opaque 500.
func respondDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidRegistration):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "already exists")
	case errors.Is(err, errs.ErrUserNotFound), errors.Is(err, errs.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "bad credentials")
	case errors.Is(err, errs.ErrSessionInvalid):
		respondError(w, http.StatusUnauthorized, "invalid session")
	case errors.Is(err, errs.ErrForbidden):
		respondError(w, http.StatusForbidden, "not the author")
	default:
		respondError(w, http.StatusInternalServerError, "internal")
	}
}

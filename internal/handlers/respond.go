package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ArchiveDesk/internal/model"
	"ArchiveDesk/internal/repo"
)

func writeEnvelope(w http.ResponseWriter, status int, env model.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// ok пишет успешный конверт с data.
func ok(w http.ResponseWriter, status int, message string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
	writeEnvelope(w, status, model.Envelope{Status: "success", Message: message, Data: raw})
}

// fail пишет конверт ошибки.
func fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, model.Envelope{Status: "error", Message: message})
}

// failErr maps repository errors to HTTP statuses.
func failErr(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		fail(w, http.StatusNotFound, notFound)
	case errors.Is(err, repo.ErrInvalid):
		fail(w, http.StatusBadRequest, err.Error())
	default:
		fail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

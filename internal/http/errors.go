package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/service/causes"
)

const (
	msgTeamNotFound      = "team not found"
	msgSearchUnavailable = "cause search unavailable"
	msgInternal          = "internal server error"
)

// writeJSON encodes payload as the response body with the given status.
// Encoding happens before the header is written so a payload that cannot be
// encoded becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		slog.Error("encode response", "status", status, "error", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"` + msgInternal + `"}` + "\n")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("write response", "error", err)
	}
}

// writeError sends {"error": msg}. Every failure response uses this shape.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto HTTP responses.
func (r *Router) writeServiceError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var upstream *causes.UpstreamError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, msgTeamNotFound)
	case errors.As(err, &upstream):
		r.logger.Warn("cause search failed", "status", upstream.Status, "error", err)
		writeError(w, http.StatusBadGateway, msgSearchUnavailable)
	default:
		r.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

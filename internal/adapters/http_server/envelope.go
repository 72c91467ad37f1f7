package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/domain"
)

// envelope is {"status": code, key: payload}; the HTTP status always
// matches the status field.
func envelope(status int, key string, payload any) map[string]any {
	return map[string]any{"status": status, key: payload}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		status = http.StatusInternalServerError
		body = []byte(`{"status":500,"message":"Internal Server Error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope(status, "message", msg))
}

// writeError is the single place domain errors become HTTP answers.
// fallback is the message used for 500s so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, msg := statusFor(err, fallback)
	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	writeMessage(w, status, msg)
}

func statusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "Unauthorized"
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Service Unavailable"
	}
	if fallback == "" {
		fallback = "Internal Server Error"
	}
	return http.StatusInternalServerError, fallback
}

// internal/server/handler.go
package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/validation"

	"github.com/go-chi/chi/v5"
)

const readyTimeout = 2 * time.Second

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, h.registry.List())
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	activity, email, err := activityAndEmail(r)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	res, err := h.registry.Signup(r.Context(), activity, email)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) removeParticipant(w http.ResponseWriter, r *http.Request) {
	activity, email, err := activityAndEmail(r)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	res, err := h.registry.RemoveParticipant(r.Context(), activity, email)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		h.logger.Warn("readiness check failed", map[string]interface{}{"checks": failed})
		apperrors.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"time":   time.Now().Format(time.RFC3339),
			"checks": failed,
		})
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// activityAndEmail reads the activity path segment and the email query
// parameter. Escaped slashes leave the segment encoded, so it is decoded here.
func activityAndEmail(r *http.Request) (string, string, error) {
	activity := chi.URLParam(r, "activity")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(activity); err == nil {
			activity = decoded
		}
	}

	email := r.URL.Query().Get("email")
	if res := validation.RequireNonEmpty("email", email); !res.Valid {
		return activity, "", apperrors.NewEmailRequiredError()
	}
	return activity, email, nil
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/petcare/internal/petcare"
)

type SettingsHandler struct {
	svc    *petcare.Service
	logger *slog.Logger
}

func NewSettingsHandler(svc *petcare.Service, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeError(w, h.logger, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Update handles PUT /api/settings. Fields absent from the body keep their
// current values.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeError(w, h.logger, "get settings", err)
		return
	}
	next := current
	if !decode(w, r, &next) {
		return
	}
	if err := h.svc.UpdateSettings(r.Context(), next); err != nil {
		writeError(w, h.logger, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

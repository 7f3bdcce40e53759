package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/petcare"
)

type ReminderHandler struct {
	svc    *petcare.Service
	logger *slog.Logger
}

func NewReminderHandler(svc *petcare.Service, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{svc: svc, logger: logger}
}

// reminderResponse carries the scheduling outcome so the UI can explain a
// reminder saved without an alarm.
type reminderResponse struct {
	model.Reminder
	Scheduled int               `json:"scheduled"`
	Skipped   notify.SkipReason `json:"skipped,omitempty"`
	Deferred  bool              `json:"deferred,omitempty"`
}

func newReminderResponse(r model.Reminder, res notify.Result) reminderResponse {
	return reminderResponse{Reminder: r, Scheduled: len(res.Handles), Skipped: res.Skipped, Deferred: res.Deferred}
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	petID := r.PathValue("pet_id")
	if petID == "" {
		petID = r.URL.Query().Get("pet_id")
	}
	items, err := h.svc.ListReminders(r.Context(), petID)
	if err != nil {
		writeError(w, h.logger, "list reminders", err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(items))
}

func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	rem, err := h.svc.GetReminder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "get reminder", err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rem model.Reminder
	if !decode(w, r, &rem) {
		return
	}
	res, err := h.svc.AddReminder(r.Context(), &rem)
	if err != nil {
		writeError(w, h.logger, "create reminder", err)
		return
	}
	writeJSON(w, http.StatusCreated, newReminderResponse(rem, res))
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var rem model.Reminder
	if !decode(w, r, &rem) {
		return
	}
	res, err := h.svc.UpdateReminder(r.Context(), r.PathValue("id"), &rem)
	if err != nil {
		writeError(w, h.logger, "update reminder", err)
		return
	}
	writeJSON(w, http.StatusOK, newReminderResponse(rem, res))
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteReminder(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, "delete reminder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

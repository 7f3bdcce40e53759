package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/petcare"
	"github.com/dukerupert/petcare/internal/stats"
)

type PetHandler struct {
	svc    *petcare.Service
	stats  *stats.Service
	logger *slog.Logger
}

func NewPetHandler(svc *petcare.Service, st *stats.Service, logger *slog.Logger) *PetHandler {
	return &PetHandler{svc: svc, stats: st, logger: logger}
}

func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	pets, err := h.svc.ListPets(r.Context())
	if err != nil {
		writeError(w, h.logger, "list pets", err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(pets))
}

func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	pet, err := h.svc.GetPet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "get pet", err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var pet model.Pet
	if !decode(w, r, &pet) {
		return
	}
	if err := h.svc.CreatePet(r.Context(), &pet); err != nil {
		writeError(w, h.logger, "create pet", err)
		return
	}
	writeJSON(w, http.StatusCreated, pet)
}

func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var pet model.Pet
	if !decode(w, r, &pet) {
		return
	}
	if err := h.svc.UpdatePet(r.Context(), r.PathValue("id"), &pet); err != nil {
		writeError(w, h.logger, "update pet", err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

// Delete handles DELETE /api/pets/{id}. The body reports what the cascade removed.
func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.DeletePet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "delete pet", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Age handles GET /api/pets/{id}/age
func (h *PetHandler) Age(w http.ResponseWriter, r *http.Request) {
	age, err := h.svc.PetAge(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "compute age", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"years":  age.Years,
		"months": age.Months,
		"label":  age.String(),
	})
}

// Statistics handles GET /api/pets/{id}/statistics
func (h *PetHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.svc.GetPet(r.Context(), id); err != nil {
		writeError(w, h.logger, "get pet", err)
		return
	}
	st, err := h.stats.PerPet(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Overall handles GET /api/statistics
func (h *PetHandler) Overall(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Overall(r.Context())
	if err != nil {
		writeError(w, h.logger, "compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Reconcile handles POST /api/maintenance/reconcile
func (h *PetHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Reconcile(r.Context())
	if err != nil {
		writeError(w, h.logger, "reconcile", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// RollRecurring handles POST /api/recurring-expenses/roll
func (h *PetHandler) RollRecurring(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RollRecurringExpenses(r.Context())
	if err != nil {
		writeError(w, h.logger, "roll recurring expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": n})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/petcare/internal/petcare"
)

// RecordHandler serves CRUD routes for one record type.
type RecordHandler[T any] struct {
	records *petcare.Records[T]
	logger  *slog.Logger
}

func NewRecordHandler[T any](records *petcare.Records[T], logger *slog.Logger) *RecordHandler[T] {
	return &RecordHandler[T]{records: records, logger: logger}
}

// List handles GET /api/{collection}?pet_id= and GET /api/pets/{id}/{collection}.
func (h *RecordHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	petID := r.PathValue("pet_id")
	if petID == "" {
		petID = r.URL.Query().Get("pet_id")
	}
	items, err := h.records.List(r.Context(), petID)
	if err != nil {
		writeError(w, h.logger, "list "+h.records.Entity(), err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(items))
}

func (h *RecordHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.records.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "get "+h.records.Entity(), err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *RecordHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if !decode(w, r, &item) {
		return
	}
	if err := h.records.Create(r.Context(), &item); err != nil {
		writeError(w, h.logger, "create "+h.records.Entity(), err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *RecordHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	var item T
	if !decode(w, r, &item) {
		return
	}
	if err := h.records.Update(r.Context(), r.PathValue("id"), &item); err != nil {
		writeError(w, h.logger, "update "+h.records.Entity(), err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *RecordHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, "delete "+h.records.Entity(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the record routes under /api/{name}.
func (h *RecordHandler[T]) Register(mux *http.ServeMux, name string, petScoped bool) {
	mux.HandleFunc("GET /api/"+name, h.List)
	mux.HandleFunc("POST /api/"+name, h.Create)
	mux.HandleFunc("GET /api/"+name+"/{id}", h.Get)
	mux.HandleFunc("PUT /api/"+name+"/{id}", h.Update)
	mux.HandleFunc("DELETE /api/"+name+"/{id}", h.Delete)
	if petScoped {
		mux.HandleFunc("GET /api/pets/{pet_id}/"+name, h.List)
	}
}

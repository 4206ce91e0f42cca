package handlers

import (
	"net/http"

	"walkin-queue-service/internal/api/dto"
	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/ports"
	"walkin-queue-service/internal/services"
)

type HistoryHandler struct {
	Store ports.VenueStore
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	entries, err := h.Store.ListHistory(r.Context())
	if err != nil {
		writeServiceError(w, r, "list history", err)
		return
	}

	res := dto.ListHistoryResponse{Entries: make([]dto.HistoryEntryResponse, 0, len(entries))}
	for _, e := range entries {
		res.Entries = append(res.Entries, historyResponse(e))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *HistoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodDelete) {
		return
	}

	if err := services.RemoveHistoryEntry(r.Context(), h.Store, r.PathValue("id")); err != nil {
		writeServiceError(w, r, "remove history entry", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func historyResponse(e domain.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:       e.ID,
		Size:     e.Size,
		Note:     e.Note,
		CourseID: e.CourseID,
		EnterAt:  e.EnterAt,
		ExitAt:   e.ExitAt,
	}
}

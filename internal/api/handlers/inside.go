package handlers

import (
	"net/http"

	"walkin-queue-service/internal/api/dto"
	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/ports"
	"walkin-queue-service/internal/services"
)

type InsideHandler struct {
	Store ports.VenueStore
	Now   Clock
}

func (h *InsideHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, r, "list inside", err)
		return
	}

	res := dto.ListInsideResponse{Occupants: make([]dto.OccupantResponse, 0, len(snap.Occupants))}
	for _, o := range snap.Occupants {
		res.Headcount += o.Size
		res.Occupants = append(res.Occupants, occupantResponse(o))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Remove deletes an occupant without history: DELETE /inside/{id}.
func (h *InsideHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodDelete) {
		return
	}

	if err := services.RemoveOccupant(r.Context(), h.Store, r.PathValue("id")); err != nil {
		writeServiceError(w, r, "remove occupant", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout records the occupant in history: POST /inside/{id}/checkout.
func (h *InsideHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	entry, err := services.CheckoutOccupant(r.Context(), h.Store, r.PathValue("id"), h.Now.now())
	if err != nil {
		writeServiceError(w, r, "checkout occupant", err)
		return
	}

	writeJSON(w, r, http.StatusOK, historyResponse(entry))
}

func occupantResponse(o domain.Occupant) dto.OccupantResponse {
	return dto.OccupantResponse{
		ID:       o.ID,
		Size:     o.Size,
		Note:     o.Note,
		CourseID: o.CourseID,
		EnterAt:  o.EnterAt,
		ExitAt:   o.ExitAt,
	}
}

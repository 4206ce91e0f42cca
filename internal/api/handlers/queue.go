package handlers

import (
	"net/http"
	"strconv"

	"walkin-queue-service/internal/api/dto"
	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/ports"
	"walkin-queue-service/internal/services"
)

// QueueHandler serves the waiting line and its admission estimates.
type QueueHandler struct {
	Store ports.VenueStore
	Now   Clock
}

// Queue handles GET (list with estimates) and POST (join) on /queue.
func (h *QueueHandler) Queue(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.join(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *QueueHandler) list(w http.ResponseWriter, r *http.Request) {
	view, err := services.QueueEstimates(r.Context(), h.Store, h.Now.now())
	if err != nil {
		writeServiceError(w, r, "queue estimates", err)
		return
	}

	res := dto.ListQueueResponse{
		Capacity: view.Capacity,
		Parties:  make([]dto.PartyResponse, 0, len(view.Queue)),
	}
	for _, p := range view.Queue {
		res.Parties = append(res.Parties, partyResponse(p, view.Admissions[p.ID]))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *QueueHandler) join(w http.ResponseWriter, r *http.Request) {
	var req dto.JoinQueueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := services.JoinQueue(r.Context(), h.Store, req.Size, req.Note, h.Now.now())
	if err != nil {
		writeServiceError(w, r, "join queue", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, partyResponse(p, domain.Admission{}))
}

// Party handles PATCH (edit size/note) and DELETE (leave) on /queue/{id}.
func (h *QueueHandler) Party(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		h.update(w, r)
	case http.MethodDelete:
		h.leave(w, r)
	default:
		w.Header().Set("Allow", "PATCH, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *QueueHandler) update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePartyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := services.UpdateParty(r.Context(), h.Store, r.PathValue("id"), req.Size, req.Note)
	if err != nil {
		writeServiceError(w, r, "update party", err)
		return
	}

	writeJSON(w, r, http.StatusOK, partyResponse(p, domain.Admission{}))
}

func (h *QueueHandler) leave(w http.ResponseWriter, r *http.Request) {
	if err := services.LeaveQueue(r.Context(), h.Store, r.PathValue("id")); err != nil {
		writeServiceError(w, r, "leave queue", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Admit moves a party inside on a course: POST /queue/{id}/admit.
func (h *QueueHandler) Admit(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.AdmitPartyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := services.AdmitParty(r.Context(), h.Store, r.PathValue("id"), req.CourseID, h.Now.now())
	if err != nil {
		writeServiceError(w, r, "admit party", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, occupantResponse(o))
}

// Preview estimates the wait for a party that has not joined yet:
// GET /estimates/preview?size=n.
func (h *QueueHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 {
		writeError(w, r, http.StatusBadRequest, "size must be a positive integer")
		return
	}

	a, err := services.PreviewWait(r.Context(), h.Store, size, h.Now.now())
	if err != nil {
		writeServiceError(w, r, "preview wait", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.PreviewResponse{
		Size:             size,
		WaitMinutes:      a.WaitMinutes,
		EstimatedEntryAt: a.AssignedAt,
		Approximate:      a.Approximate,
	})
}

func partyResponse(p domain.Party, a domain.Admission) dto.PartyResponse {
	res := dto.PartyResponse{
		ID:     p.ID,
		Size:   p.Size,
		Note:   p.Note,
		JoinAt: p.JoinAt,
	}
	if a.PartyID == "" {
		return res
	}

	wait := a.WaitMinutes
	entry := a.AssignedAt
	res.WaitMinutes = &wait
	res.EstimatedEntryAt = &entry
	res.Approximate = a.Approximate
	return res
}

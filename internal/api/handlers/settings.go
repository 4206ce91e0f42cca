package handlers

import (
	"net/http"

	"walkin-queue-service/internal/api/dto"
	"walkin-queue-service/internal/ports"
	"walkin-queue-service/internal/services"
)

// VenueHandler exposes courses and capacity settings.
type VenueHandler struct {
	Store ports.VenueStore
}

func (h *VenueHandler) Courses(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	courses, err := h.Store.ListCourses(r.Context())
	if err != nil {
		writeServiceError(w, r, "list courses", err)
		return
	}

	res := dto.ListCoursesResponse{Courses: make([]dto.CourseResponse, 0, len(courses))}
	for _, c := range courses {
		res.Courses = append(res.Courses, dto.CourseResponse{ID: c.ID, Name: c.Name, Minutes: c.Minutes})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Settings handles GET and PUT on /settings.
func (h *VenueHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap, err := h.Store.Snapshot(r.Context())
		if err != nil {
			writeServiceError(w, r, "read settings", err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.SettingsResponse{MaxCapacity: snap.Settings.MaxCapacity})

	case http.MethodPut:
		var req dto.SettingsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := services.UpdateCapacity(r.Context(), h.Store, req.MaxCapacity); err != nil {
			writeServiceError(w, r, "update capacity", err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.SettingsResponse{MaxCapacity: req.MaxCapacity})

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

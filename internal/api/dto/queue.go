package dto

import "time"

type JoinQueueRequest struct {
	Size int    `json:"size" validate:"required,min=1,max=100"`
	Note string `json:"note" validate:"max=200"`
}

// Omitted fields are left unchanged.
type UpdatePartyRequest struct {
	Size *int    `json:"size" validate:"omitempty,min=1,max=100"`
	Note *string `json:"note" validate:"omitempty,max=200"`
}

type PartyResponse struct {
	ID               string     `json:"id"`
	Size             int        `json:"size"`
	Note             string     `json:"note"`
	JoinAt           time.Time  `json:"join_at"`
	WaitMinutes      *int       `json:"wait_minutes,omitempty"`
	EstimatedEntryAt *time.Time `json:"estimated_entry_at,omitempty"`
	Approximate      bool       `json:"approximate"`
}

type ListQueueResponse struct {
	Capacity int             `json:"capacity"`
	Parties  []PartyResponse `json:"parties"`
}

type AdmitPartyRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

type PreviewResponse struct {
	Size             int       `json:"size"`
	WaitMinutes      int       `json:"wait_minutes"`
	EstimatedEntryAt time.Time `json:"estimated_entry_at"`
	Approximate      bool      `json:"approximate"`
}

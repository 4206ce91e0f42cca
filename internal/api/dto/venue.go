package dto

import "time"

type OccupantResponse struct {
	ID       string    `json:"id"`
	Size     int       `json:"size"`
	Note     string    `json:"note"`
	CourseID string    `json:"course_id"`
	EnterAt  time.Time `json:"enter_at"`
	ExitAt   time.Time `json:"exit_at"`
}

type ListInsideResponse struct {
	Headcount int                `json:"headcount"`
	Occupants []OccupantResponse `json:"occupants"`
}

type HistoryEntryResponse struct {
	ID       string     `json:"id"`
	Size     int        `json:"size"`
	Note     string     `json:"note"`
	CourseID string     `json:"course_id"`
	EnterAt  *time.Time `json:"enter_at"`
	ExitAt   time.Time  `json:"exit_at"`
}

type ListHistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

type CourseResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

type ListCoursesResponse struct {
	Courses []CourseResponse `json:"courses"`
}

type SettingsRequest struct {
	MaxCapacity int `json:"max_capacity" validate:"required,min=1,max=10000"`
}

type SettingsResponse struct {
	MaxCapacity int `json:"max_capacity"`
}

package dto

import "github.com/kittisak-dev/timetable-api/internal/models"

// ValidateQuery narrows which conflicts are reported. Filtering changes
// what is shown, never what exists.
type ValidateQuery struct {
	DepartmentID string `form:"departmentId" json:"departmentId"`
	Group        string `form:"group" json:"group"`
	Type         string `form:"type" json:"type" validate:"omitempty,oneof=ALL ROOM TEACHER CLASS CAPACITY"`
}

// ValidateResponse carries the detected conflicts and their summary.
type ValidateResponse struct {
	Conflicts []models.Conflict        `json:"conflicts"`
	Summary   models.ValidationSummary `json:"summary"`
}

package dto

import "github.com/kittisak-dev/timetable-api/internal/models"

// GenerateGroupRequest asks for one class group's schedule to be rebuilt.
type GenerateGroupRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
	Group        string `json:"group" validate:"required"`
}

// GenerateDepartmentRequest asks for every group in a department to be
// rebuilt sequentially.
type GenerateDepartmentRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
}

// UnplacedSession describes a session unit the generator could not place.
type UnplacedSession struct {
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Duration    int    `json:"duration"`
	Reason      string `json:"reason"`
}

// GroupResult is the outcome for a single class group.
type GroupResult struct {
	Group       string              `json:"group"`
	Assignments []models.Assignment `json:"assignments"`
	Unplaced    []UnplacedSession   `json:"unplaced,omitempty"`
}

// GenerateGroupResponse returns a single group's rebuilt schedule.
type GenerateGroupResponse struct {
	Result GroupResult `json:"result"`
	Log    []string    `json:"log"`
}

// GenerateRunResponse returns a multi-group run's rebuilt schedules.
type GenerateRunResponse struct {
	Results []GroupResult `json:"results"`
	Log     []string      `json:"log"`
}

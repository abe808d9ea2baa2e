package models

import (
	"time"

	"github.com/lib/pq"
)

// Subject represents a taught subject and its weekly demand.
type Subject struct {
	ID                string         `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	Periods           int            `db:"periods" json:"periods"`
	PeriodsPerSession int            `db:"periods_per_session" json:"periods_per_session"`
	RoomType          string         `db:"room_type" json:"room_type"`
	RoomTag           string         `db:"room_tag" json:"room_tag"`
	TeacherIDs        pq.StringArray `db:"teacher_ids" json:"teacher_ids"`
	DepartmentIDs     pq.StringArray `db:"department_ids" json:"department_ids"`
	IsGeneral         bool           `db:"is_general" json:"is_general"`
	Color             string         `db:"color" json:"color"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// AppliesTo reports whether the subject is taught in the given department.
// General subjects apply everywhere.
func (s Subject) AppliesTo(departmentID string) bool {
	if s.IsGeneral {
		return true
	}
	for _, id := range s.DepartmentIDs {
		if id == departmentID {
			return true
		}
	}
	return false
}

// SessionDuration returns the length of one session in slots.
func (s Subject) SessionDuration() int {
	if s.PeriodsPerSession <= 0 {
		return 1
	}
	return s.PeriodsPerSession
}

// SessionCount returns how many session units the subject expands into.
func (s Subject) SessionCount() int {
	periods := s.Periods
	if periods <= 0 {
		periods = 1
	}
	dur := s.SessionDuration()
	return (periods + dur - 1) / dur
}

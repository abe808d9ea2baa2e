package models

// ConflictType classifies a detected timetable violation.
type ConflictType string

const (
	ConflictRoom     ConflictType = "ROOM"
	ConflictTeacher  ConflictType = "TEACHER"
	ConflictClass    ConflictType = "CLASS"
	ConflictCapacity ConflictType = "CAPACITY"
)

// Conflict is one detected violation. Pairwise conflicts carry both
// assignments; CAPACITY conflicts carry only the first plus the sizes.
type Conflict struct {
	Type      ConflictType `json:"type"`
	First     Assignment   `json:"first"`
	Second    *Assignment  `json:"second,omitempty"`
	GroupSize int          `json:"group_size,omitempty"`
	Capacity  int          `json:"capacity,omitempty"`
}

// ValidationSummary aggregates a validation run.
type ValidationSummary struct {
	Assignments int                  `json:"assignments"`
	Total       int                  `json:"total_conflicts"`
	ByType      map[ConflictType]int `json:"by_type"`
}

package models

import "sort"

// Assignment is one scheduled session: a subject taught to a class group by
// a teacher in a room at (day, slot) for duration slots. Assignments are
// immutable once created; regeneration replaces a group's whole list.
type Assignment struct {
	ID          string `db:"id" json:"id"`
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	RoomID      string `db:"room_id" json:"room_id"`
	RoomName    string `db:"room_name" json:"room_name"`
	ClassGroup  string `db:"class_group" json:"class_group"`
	Day         int    `db:"day" json:"day"`
	Slot        int    `db:"slot" json:"slot"`
	Duration    int    `db:"duration" json:"duration"`
	Color       string `db:"color" json:"color,omitempty"`
}

// Overlaps reports whether two (day, start, duration) windows intersect.
// Different days never overlap; within a day the slot ranges are half-open
// [start, start+duration). Durations below 1 count as 1.
//
// Every conflict decision in the generator and the validator goes through
// this one predicate so the two can never disagree.
func Overlaps(dayA, startA, durA, dayB, startB, durB int) bool {
	if dayA != dayB {
		return false
	}
	if durA <= 0 {
		durA = 1
	}
	if durB <= 0 {
		durB = 1
	}
	return startA < startB+durB && startB < startA+durA
}

// OverlapsWith reports whether two assignments occupy intersecting windows.
func (a Assignment) OverlapsWith(b Assignment) bool {
	return Overlaps(a.Day, a.Slot, a.Duration, b.Day, b.Slot, b.Duration)
}

// Timetables maps a class-group key to that group's assignments.
type Timetables map[string][]Assignment

// Flatten returns every assignment across all groups, ordered by group key
// for deterministic iteration.
func (t Timetables) Flatten() []Assignment {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var all []Assignment
	for _, key := range keys {
		all = append(all, t[key]...)
	}
	return all
}

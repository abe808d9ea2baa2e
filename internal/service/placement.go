package service

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

// placementAttempts bounds the random search per session unit and pass.
// It is a fixed worst-case budget, not adaptive to institution size.
const placementAttempts = 500

// Skip reasons for session units that could not be placed.
const (
	reasonNoEligibleRoom     = "NO_ELIGIBLE_ROOM"
	reasonNoCapacityRoom     = "NO_CAPACITY_ROOM"
	reasonNoEligibleTeacher  = "NO_ELIGIBLE_TEACHER"
	reasonPlacementExhausted = "PLACEMENT_EXHAUSTED"
)

// sessionUnit is one indivisible placement request derived from a subject.
type sessionUnit struct {
	subject  models.Subject
	duration int
}

// generationRun carries the immutable inputs and accumulated state of one
// generation run. locked holds assignments the run must never conflict with
// but does not re-place.
type generationRun struct {
	settings models.Settings
	rooms    []models.Room
	teachers []models.Teacher
	subjects []models.Subject
	locked   []models.Assignment
	rng      *rand.Rand
	log      *runLog

	// multiScope relaxes the capacity filter: department and institution
	// runs fall back to the closest room instead of dropping the session.
	multiScope bool
}

// matchRooms resolves the candidate rooms for a subject. A room tag is
// matched first (case-insensitive, trimmed); in strict mode a tag with no
// matching room yields no candidates at all. Otherwise matching falls back
// to the room type and finally to every room.
func (r *generationRun) matchRooms(subject models.Subject) []models.Room {
	tag := strings.ToLower(strings.TrimSpace(subject.RoomTag))
	if tag != "" {
		var tagged []models.Room
		for _, room := range r.rooms {
			if strings.ToLower(strings.TrimSpace(room.RoomTag)) == tag {
				tagged = append(tagged, room)
			}
		}
		if len(tagged) > 0 {
			return tagged
		}
		if r.settings.StrictRoomTag {
			return nil
		}
	}

	var result []models.Room
	if strings.TrimSpace(subject.RoomType) != "" {
		for _, room := range r.rooms {
			if room.RoomType == subject.RoomType {
				result = append(result, room)
			}
		}
	}
	if len(result) == 0 {
		result = r.rooms
	}
	return result
}

// matchTeachers returns the subject's explicit roster, or every teacher
// when the roster is empty.
func (r *generationRun) matchTeachers(subject models.Subject) []models.Teacher {
	if len(subject.TeacherIDs) == 0 {
		return r.teachers
	}
	allowed := make(map[string]struct{}, len(subject.TeacherIDs))
	for _, id := range subject.TeacherIDs {
		allowed[id] = struct{}{}
	}
	var result []models.Teacher
	for _, t := range r.teachers {
		if _, ok := allowed[t.ID]; ok {
			result = append(result, t)
		}
	}
	return result
}

// teacherLoad sums assigned durations for a teacher over locked plus
// working assignments.
func (r *generationRun) teacherLoad(teacherID string, working []models.Assignment) int {
	load := 0
	for _, a := range r.locked {
		if a.TeacherID == teacherID {
			load += durationOf(a)
		}
	}
	for _, a := range working {
		if a.TeacherID == teacherID {
			load += durationOf(a)
		}
	}
	return load
}

// dayLoads sums per-day durations for a class group over locked plus
// working assignments.
func (r *generationRun) dayLoads(group string, working []models.Assignment) []int {
	loads := make([]int, r.settings.Days)
	count := func(a models.Assignment) {
		if a.ClassGroup != group || a.Day < 0 || a.Day >= r.settings.Days {
			return
		}
		loads[a.Day] += durationOf(a)
	}
	for _, a := range r.locked {
		count(a)
	}
	for _, a := range working {
		count(a)
	}
	return loads
}

// pickDay selects the day for the next attempt. With spreading enabled the
// choice is uniform over the min(3, days) lightest-loaded days, load ties
// keeping day-index order; otherwise uniform over all days.
func (r *generationRun) pickDay(group string, working []models.Assignment) int {
	if !r.settings.SpreadDays {
		return r.rng.Intn(r.settings.Days)
	}

	loads := r.dayLoads(group, working)
	order := make([]int, r.settings.Days)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return loads[order[i]] < loads[order[j]]
	})

	pickCount := 3
	if r.settings.Days < pickCount {
		pickCount = r.settings.Days
	}
	return order[r.rng.Intn(pickCount)]
}

// pickTeacher selects a teacher for the next attempt. With balancing
// enabled the choice is uniform over the minimally loaded eligible
// teachers; otherwise uniform over all eligible teachers.
func (r *generationRun) pickTeacher(candidates []models.Teacher, working []models.Assignment) *models.Teacher {
	if len(candidates) == 0 {
		return nil
	}
	if !r.settings.BalanceTeachers {
		return &candidates[r.rng.Intn(len(candidates))]
	}

	var best []int
	bestLoad := -1
	for i := range candidates {
		load := r.teacherLoad(candidates[i].ID, working)
		switch {
		case bestLoad < 0 || load < bestLoad:
			bestLoad = load
			best = best[:0]
			best = append(best, i)
		case load == bestLoad:
			best = append(best, i)
		}
	}
	return &candidates[best[r.rng.Intn(len(best))]]
}

// busy reports whether any locked or working assignment matching the
// predicate overlaps the (day, start, duration) window.
func (r *generationRun) busy(day, start, duration int, working []models.Assignment, match func(models.Assignment) bool) bool {
	for _, a := range r.locked {
		if match(a) && models.Overlaps(day, start, duration, a.Day, a.Slot, a.Duration) {
			return true
		}
	}
	for _, a := range working {
		if match(a) && models.Overlaps(day, start, duration, a.Day, a.Slot, a.Duration) {
			return true
		}
	}
	return false
}

// expandSessions builds the session units for one department's subject set.
func (r *generationRun) expandSessions(departmentID string) []sessionUnit {
	var units []sessionUnit
	for _, subject := range r.subjects {
		if !subject.AppliesTo(departmentID) {
			continue
		}
		count := subject.SessionCount()
		for i := 0; i < count; i++ {
			units = append(units, sessionUnit{subject: subject, duration: subject.SessionDuration()})
		}
	}
	return units
}

// orderSessions sorts units hardest first: long sessions with few eligible
// teachers and few adequate rooms get first access to open slots. The score
// is a greedy priority, not a feasibility guarantee.
func (r *generationRun) orderSessions(units []sessionUnit, groupSize int) []sessionUnit {
	ordered := make([]sessionUnit, len(units))
	copy(ordered, units)
	sort.SliceStable(ordered, func(i, j int) bool {
		return r.difficultyScore(ordered[i], groupSize) > r.difficultyScore(ordered[j], groupSize)
	})
	return ordered
}

func (r *generationRun) difficultyScore(unit sessionUnit, groupSize int) int {
	teacherChoices := len(unit.subject.TeacherIDs)
	if teacherChoices == 0 {
		teacherChoices = len(r.teachers)
	}

	roomChoices := 0
	for _, room := range r.matchRooms(unit.subject) {
		if room.Fits(groupSize) {
			roomChoices++
		}
	}
	if roomChoices == 0 {
		roomChoices = 999
	}

	return unit.duration*100 - teacherChoices*5 - roomChoices
}

// placeSession runs the retry-bounded random search for one session unit.
// Pass 0 keeps the lunch slot free when lunch avoidance is on; pass 1
// relaxes that preference rather than failing the unit on it. Returns the
// committed assignment, or nil and a skip reason.
func (r *generationRun) placeSession(group string, rooms []models.Room, teachers []models.Teacher, unit sessionUnit, working []models.Assignment) (*models.Assignment, string) {
	maxStart := r.settings.TimeslotsPerDay - unit.duration
	if maxStart < 0 {
		return nil, reasonPlacementExhausted
	}

	for pass := 0; pass < 2; pass++ {
		allowLunch := pass == 1 || !r.settings.AvoidLunch

		for attempt := 0; attempt < placementAttempts; attempt++ {
			day := r.pickDay(group, working)
			start := r.rng.Intn(maxStart + 1)
			if r.settings.AvoidLunch && !allowLunch && start == r.settings.LunchSlot {
				continue
			}

			teacher := r.pickTeacher(teachers, working)
			if teacher == nil {
				continue
			}
			if teacher.IsUnavailable(day, start, unit.duration) {
				continue
			}

			if r.busy(day, start, unit.duration, working, func(a models.Assignment) bool {
				return a.TeacherID == teacher.ID
			}) {
				continue
			}
			if r.busy(day, start, unit.duration, working, func(a models.Assignment) bool {
				return a.ClassGroup == group
			}) {
				continue
			}

			for _, room := range rooms {
				roomID := room.ID
				if r.busy(day, start, unit.duration, working, func(a models.Assignment) bool {
					return a.RoomID == roomID
				}) {
					continue
				}

				return &models.Assignment{
					SubjectID:   unit.subject.ID,
					SubjectName: unit.subject.Name,
					TeacherID:   teacher.ID,
					TeacherName: teacher.Name,
					RoomID:      room.ID,
					RoomName:    room.Name,
					ClassGroup:  group,
					Day:         day,
					Slot:        start,
					Duration:    unit.duration,
					Color:       unit.subject.Color,
				}, ""
			}
		}
	}

	return nil, reasonPlacementExhausted
}

func durationOf(a models.Assignment) int {
	if a.Duration <= 0 {
		return 1
	}
	return a.Duration
}

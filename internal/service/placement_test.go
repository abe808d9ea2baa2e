package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

func newTestRun(settings models.Settings, rooms []models.Room, teachers []models.Teacher, subjects []models.Subject) *generationRun {
	settings.Normalize()
	return &generationRun{
		settings: settings,
		rooms:    rooms,
		teachers: teachers,
		subjects: subjects,
		rng:      rand.New(rand.NewSource(1)),
		log:      newRunLog(nil),
	}
}

func TestMatchRoomsPrefersTag(t *testing.T) {
	rooms := []models.Room{
		{ID: "r1", RoomType: "lab"},
		{ID: "r2", RoomTag: " Welding "},
		{ID: "r3", RoomType: "theory"},
	}
	run := newTestRun(models.DefaultSettings(), rooms, nil, nil)

	matched := run.matchRooms(models.Subject{RoomTag: "welding", RoomType: "lab"})
	require.Len(t, matched, 1)
	assert.Equal(t, "r2", matched[0].ID)
}

func TestMatchRoomsStrictTagMiss(t *testing.T) {
	rooms := []models.Room{{ID: "r1", RoomType: "lab"}}

	strict := newTestRun(models.DefaultSettings(), rooms, nil, nil)
	assert.Empty(t, strict.matchRooms(models.Subject{RoomTag: "welding"}))

	settings := models.DefaultSettings()
	settings.StrictRoomTag = false
	relaxed := newTestRun(settings, rooms, nil, nil)
	assert.Len(t, relaxed.matchRooms(models.Subject{RoomTag: "welding"}), 1)
}

func TestMatchRoomsTypeFallback(t *testing.T) {
	rooms := []models.Room{
		{ID: "r1", RoomType: "lab"},
		{ID: "r2", RoomType: "theory"},
	}
	run := newTestRun(models.DefaultSettings(), rooms, nil, nil)

	matched := run.matchRooms(models.Subject{RoomType: "theory"})
	require.Len(t, matched, 1)
	assert.Equal(t, "r2", matched[0].ID)

	all := run.matchRooms(models.Subject{RoomType: "workshop"})
	assert.Len(t, all, 2)

	untyped := run.matchRooms(models.Subject{})
	assert.Len(t, untyped, 2)
}

func TestMatchTeachersRoster(t *testing.T) {
	teachers := []models.Teacher{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	run := newTestRun(models.DefaultSettings(), nil, teachers, nil)

	roster := run.matchTeachers(models.Subject{TeacherIDs: []string{"t2", "t3"}})
	require.Len(t, roster, 2)

	everyone := run.matchTeachers(models.Subject{})
	assert.Len(t, everyone, 3)

	missing := run.matchTeachers(models.Subject{TeacherIDs: []string{"t9"}})
	assert.Empty(t, missing)
}

func TestTeacherLoadSumsLockedAndWorking(t *testing.T) {
	run := newTestRun(models.DefaultSettings(), nil, nil, nil)
	run.locked = []models.Assignment{
		{TeacherID: "t1", Duration: 2},
		{TeacherID: "t2", Duration: 1},
	}
	working := []models.Assignment{{TeacherID: "t1", Duration: 3}}

	assert.Equal(t, 5, run.teacherLoad("t1", working))
	assert.Equal(t, 1, run.teacherLoad("t2", working))
	assert.Equal(t, 0, run.teacherLoad("t3", working))
}

func TestPickDayPrefersLightDays(t *testing.T) {
	settings := models.DefaultSettings()
	run := newTestRun(settings, nil, nil, nil)
	// Days 0-2 carry heavy load; 3 and 4 are empty.
	run.locked = []models.Assignment{
		{ClassGroup: "g", Day: 0, Duration: 6},
		{ClassGroup: "g", Day: 1, Duration: 6},
		{ClassGroup: "g", Day: 2, Duration: 6},
	}

	for i := 0; i < 50; i++ {
		day := run.pickDay("g", nil)
		assert.NotEqual(t, 0, day)
		assert.NotEqual(t, 1, day)
	}
}

func TestPickTeacherBalancesLoad(t *testing.T) {
	teachers := []models.Teacher{{ID: "t1"}, {ID: "t2"}}
	run := newTestRun(models.DefaultSettings(), nil, teachers, nil)
	run.locked = []models.Assignment{{TeacherID: "t1", Duration: 4}}

	for i := 0; i < 20; i++ {
		picked := run.pickTeacher(teachers, nil)
		require.NotNil(t, picked)
		assert.Equal(t, "t2", picked.ID)
	}

	assert.Nil(t, run.pickTeacher(nil, nil))
}

func TestOrderSessionsHardestFirst(t *testing.T) {
	teachers := []models.Teacher{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	rooms := []models.Room{{ID: "r1"}, {ID: "r2"}}
	run := newTestRun(models.DefaultSettings(), rooms, teachers, nil)

	easy := sessionUnit{subject: models.Subject{ID: "easy"}, duration: 1}
	long := sessionUnit{subject: models.Subject{ID: "long"}, duration: 3}
	scarce := sessionUnit{subject: models.Subject{ID: "scarce", TeacherIDs: []string{"t1"}}, duration: 3}

	ordered := run.orderSessions([]sessionUnit{easy, long, scarce}, 0)
	require.Len(t, ordered, 3)
	assert.Equal(t, "scarce", ordered[0].subject.ID)
	assert.Equal(t, "long", ordered[1].subject.ID)
	assert.Equal(t, "easy", ordered[2].subject.ID)
}

func TestExpandSessionsSplitsPeriods(t *testing.T) {
	subjects := []models.Subject{
		{ID: "s1", Periods: 5, PeriodsPerSession: 2, DepartmentIDs: []string{"dep-1"}},
		{ID: "s2", Periods: 2, PeriodsPerSession: 2, IsGeneral: true},
		{ID: "s3", Periods: 2, DepartmentIDs: []string{"dep-2"}},
	}
	run := newTestRun(models.DefaultSettings(), nil, nil, subjects)

	units := run.expandSessions("dep-1")
	require.Len(t, units, 4)

	var s1Count int
	for _, u := range units {
		if u.subject.ID == "s1" {
			s1Count++
			assert.Equal(t, 2, u.duration)
		}
	}
	assert.Equal(t, 3, s1Count)
}

func TestPlaceSessionRespectsLockedAssignments(t *testing.T) {
	settings := models.Settings{Days: 1, TimeslotsPerDay: 4, AvoidLunch: false}
	rooms := []models.Room{{ID: "r1", Name: "Room 1"}}
	teachers := []models.Teacher{{ID: "t1", Name: "Teacher 1"}}
	run := newTestRun(settings, rooms, teachers, nil)
	run.locked = []models.Assignment{
		{ClassGroup: "other", TeacherID: "t1", RoomID: "r1", Day: 0, Slot: 0, Duration: 2},
	}

	unit := sessionUnit{subject: models.Subject{ID: "s1", Name: "Subject"}, duration: 2}
	placed, reason := run.placeSession("g", rooms, teachers, unit, nil)
	require.NotNil(t, placed, "slots 2-3 remain free")
	assert.Empty(t, reason)
	assert.Equal(t, 2, placed.Slot)
	assert.Equal(t, "t1", placed.TeacherID)
	assert.Equal(t, "Room 1", placed.RoomName)
}

func TestPlaceSessionExhaustsWhenNoRoomLeft(t *testing.T) {
	settings := models.Settings{Days: 1, TimeslotsPerDay: 2, AvoidLunch: false}
	rooms := []models.Room{{ID: "r1"}}
	teachers := []models.Teacher{{ID: "t1"}}
	run := newTestRun(settings, rooms, teachers, nil)
	run.locked = []models.Assignment{
		{ClassGroup: "other", RoomID: "r1", Day: 0, Slot: 0, Duration: 2},
	}

	unit := sessionUnit{subject: models.Subject{ID: "s1"}, duration: 1}
	placed, reason := run.placeSession("g", rooms, teachers, unit, nil)
	assert.Nil(t, placed)
	assert.Equal(t, reasonPlacementExhausted, reason)
}

func TestPlaceSessionTooLongForDay(t *testing.T) {
	settings := models.Settings{Days: 1, TimeslotsPerDay: 2}
	run := newTestRun(settings, []models.Room{{ID: "r1"}}, []models.Teacher{{ID: "t1"}}, nil)

	unit := sessionUnit{subject: models.Subject{ID: "s1"}, duration: 3}
	placed, reason := run.placeSession("g", run.rooms, run.teachers, unit, nil)
	assert.Nil(t, placed)
	assert.Equal(t, reasonPlacementExhausted, reason)
}

func TestPlaceSessionAvoidsLunchWhenPossible(t *testing.T) {
	settings := models.Settings{Days: 1, TimeslotsPerDay: 3, AvoidLunch: true, LunchSlot: 1}
	rooms := []models.Room{{ID: "r1"}}
	teachers := []models.Teacher{{ID: "t1"}}
	run := newTestRun(settings, rooms, teachers, nil)

	unit := sessionUnit{subject: models.Subject{ID: "s1"}, duration: 1}
	for i := 0; i < 20; i++ {
		placed, _ := run.placeSession("g", rooms, teachers, unit, nil)
		require.NotNil(t, placed)
		assert.NotEqual(t, 1, placed.Slot)
	}
}

func TestPlaceSessionUsesLunchSlotAsLastResort(t *testing.T) {
	// The lunch slot is the only legal start: pass 0 refuses it, pass 1
	// must take it instead of failing the unit.
	settings := models.Settings{Days: 1, TimeslotsPerDay: 1, AvoidLunch: true, LunchSlot: 0}
	rooms := []models.Room{{ID: "r1"}}
	teachers := []models.Teacher{{ID: "t1"}}
	run := newTestRun(settings, rooms, teachers, nil)

	unit := sessionUnit{subject: models.Subject{ID: "s1"}, duration: 1}
	placed, reason := run.placeSession("g", rooms, teachers, unit, nil)
	require.NotNil(t, placed, "lunch avoidance is a preference, not a constraint")
	assert.Empty(t, reason)
	assert.Equal(t, 0, placed.Slot)
}

func TestPlaceSessionHonoursTeacherUnavailability(t *testing.T) {
	settings := models.Settings{Days: 1, TimeslotsPerDay: 4, AvoidLunch: false}
	rooms := []models.Room{{ID: "r1"}}
	teachers := []models.Teacher{{
		ID:          "t1",
		Unavailable: []models.UnavailableInterval{{Day: 0, Slot: 0, Duration: 2}},
	}}
	run := newTestRun(settings, rooms, teachers, nil)

	unit := sessionUnit{subject: models.Subject{ID: "s1"}, duration: 1}
	for i := 0; i < 20; i++ {
		placed, _ := run.placeSession("g", rooms, teachers, unit, nil)
		require.NotNil(t, placed)
		assert.GreaterOrEqual(t, placed.Slot, 2)
	}
}

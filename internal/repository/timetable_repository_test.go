package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func assignmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "subject_id", "subject_name", "teacher_id", "teacher_name",
		"room_id", "room_name", "class_group", "day", "slot", "duration", "color",
	})
}

func TestTimetableRepositoryListAllGroupsByClassGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := assignmentRows().
		AddRow("a1", "s1", "Math", "t1", "Teacher 1", "r1", "Room 1", "MC-101", 0, 0, 2, "#fff").
		AddRow("a2", "s2", "Physics", "t2", "Teacher 2", "r2", "Room 2", "MC-101", 0, 2, 1, "").
		AddRow("a3", "s1", "Math", "t1", "Teacher 1", "r1", "Room 1", "MC-102", 1, 0, 2, "#fff")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_id, subject_name, teacher_id, teacher_name, room_id, room_name, class_group, day, slot, duration, color FROM assignments ORDER BY class_group, day, slot")).
		WillReturnRows(rows)

	tables, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 2)
	assert.Len(t, tables["MC-101"], 2)
	assert.Len(t, tables["MC-102"], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListByGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := assignmentRows().
		AddRow("a1", "s1", "Math", "t1", "Teacher 1", "r1", "Room 1", "MC-101", 0, 0, 2, "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE class_group = $1 ORDER BY day, slot")).
		WithArgs("MC-101").
		WillReturnRows(rows)

	list, err := repo.ListByGroup(context.Background(), "MC-101")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE class_group = $1")).
		WithArgs("MC-101").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignments := []models.Assignment{{
		SubjectID: "s1", SubjectName: "Math",
		TeacherID: "t1", TeacherName: "Teacher 1",
		RoomID: "r1", RoomName: "Room 1",
		ClassGroup: "MC-101", Day: 0, Slot: 0, Duration: 2,
	}}
	err := repo.ReplaceGroup(context.Background(), "MC-101", assignments)
	require.NoError(t, err)
	assert.NotEmpty(t, assignments[0].ID, "missing IDs are filled in before insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceGroupRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE class_group = $1")).
		WithArgs("MC-101").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceGroup(context.Background(), "MC-101", []models.Assignment{{ClassGroup: "MC-101"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments")).
		WillReturnResult(sqlmock.NewResult(0, 12))

	require.NoError(t, repo.DeleteAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

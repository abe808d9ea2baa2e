package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

func TestTeacherRepositoryListNormalizesUnavailability(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "max_per_day", "unavailable", "created_at", "updated_at"}).
		AddRow("t1", "Teacher 1", 6, []byte(`[{"day":0,"slot":2,"duration":2}]`), now, now).
		AddRow("t2", "Teacher 2", 6, []byte(`[[true,false],[false,true]]`), now, now).
		AddRow("t3", "Teacher 3", 6, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, max_per_day, unavailable, created_at, updated_at FROM teachers ORDER BY created_at")).
		WillReturnRows(rows)

	teachers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 3)

	assert.Equal(t, []models.UnavailableInterval{{Day: 0, Slot: 2, Duration: 2}}, teachers[0].Unavailable)
	assert.Equal(t, []models.UnavailableInterval{
		{Day: 0, Slot: 0, Duration: 1},
		{Day: 1, Slot: 1, Duration: 1},
	}, teachers[1].Unavailable)
	assert.Empty(t, teachers[2].Unavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListToleratesMalformedUnavailability(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "max_per_day", "unavailable", "created_at", "updated_at"}).
		AddRow("t1", "Teacher 1", 6, []byte(`"not a schedule"`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers")).WillReturnRows(rows)

	teachers, err := repo.List(context.Background())
	require.NoError(t, err, "a bad payload must not fail the whole load")
	require.Len(t, teachers, 1)
	assert.Empty(t, teachers[0].Unavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

// TeacherRepository provides read access to teachers.
type TeacherRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB, logger *zap.Logger) *TeacherRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherRepository{db: db, logger: logger}
}

// List returns all teachers with their unavailability normalized into
// interval form. A malformed unavailability payload is logged and treated
// as fully available rather than failing the load.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, name, max_per_day, unavailable, created_at, updated_at FROM teachers ORDER BY created_at`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	for i := range teachers {
		if err := teachers[i].NormalizeUnavailability(); err != nil {
			r.logger.Warn("ignoring malformed teacher unavailability",
				zap.String("teacher_id", teachers[i].ID),
				zap.Error(err),
			)
			teachers[i].Unavailable = nil
		}
	}

	return teachers, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

// TimetableRepository persists the per-group assignment lists. A group's
// schedule is always replaced wholesale, never patched.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const assignmentColumns = `id, subject_id, subject_name, teacher_id, teacher_name, room_id, room_name, class_group, day, slot, duration, color`

// ListAll returns every group's assignments keyed by class group.
func (r *TimetableRepository) ListAll(ctx context.Context) (models.Timetables, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments ORDER BY class_group, day, slot`, assignmentColumns)
	var rows []models.Assignment
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	tables := make(models.Timetables)
	for _, a := range rows {
		tables[a.ClassGroup] = append(tables[a.ClassGroup], a)
	}
	return tables, nil
}

// ListByGroup returns one group's assignments.
func (r *TimetableRepository) ListByGroup(ctx context.Context, group string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE class_group = $1 ORDER BY day, slot`, assignmentColumns)
	var rows []models.Assignment
	if err := r.db.SelectContext(ctx, &rows, query, group); err != nil {
		return nil, fmt.Errorf("list assignments for group %s: %w", group, err)
	}
	return rows, nil
}

// ReplaceGroup swaps the group's schedule for the given assignments in one
// transaction. Called once per group right after that group is generated, so
// partial progress of a wider run survives interruption.
func (r *TimetableRepository) ReplaceGroup(ctx context.Context, group string, assignments []models.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace for group %s: %w", group, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE class_group = $1`, group); err != nil {
		return fmt.Errorf("clear assignments for group %s: %w", group, err)
	}

	const insert = `INSERT INTO assignments (id, subject_id, subject_name, teacher_id, teacher_name, room_id, room_name, class_group, day, slot, duration, color)
		VALUES (:id, :subject_id, :subject_name, :teacher_id, :teacher_name, :room_id, :room_name, :class_group, :day, :slot, :duration, :color)`
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, insert, assignments[i]); err != nil {
			return fmt.Errorf("insert assignment for group %s: %w", group, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace for group %s: %w", group, err)
	}
	return nil
}

// DeleteAll clears every group's schedule.
func (r *TimetableRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments`); err != nil {
		return fmt.Errorf("delete all assignments: %w", err)
	}
	return nil
}

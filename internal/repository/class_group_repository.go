package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

// ClassGroupRepository provides read access to class groups.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository creates a new class group repository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

const classGroupColumns = `id, name, department_id, student_count, created_at, updated_at`

// List returns every class group in record order. Institution-wide
// generation walks groups in exactly this order.
func (r *ClassGroupRepository) List(ctx context.Context) ([]models.ClassGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_groups ORDER BY created_at`, classGroupColumns)
	var groups []models.ClassGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list class groups: %w", err)
	}
	return groups, nil
}

// ListByDepartment returns the department's class groups in record order.
func (r *ClassGroupRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.ClassGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_groups WHERE department_id = $1 ORDER BY created_at`, classGroupColumns)
	var groups []models.ClassGroup
	if err := r.db.SelectContext(ctx, &groups, query, departmentID); err != nil {
		return nil, fmt.Errorf("list class groups by department: %w", err)
	}
	return groups, nil
}

// FindByName loads a class group by its timetable key.
func (r *ClassGroupRepository) FindByName(ctx context.Context, name string) (*models.ClassGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_groups WHERE name = $1`, classGroupColumns)
	var group models.ClassGroup
	if err := r.db.GetContext(ctx, &group, query, name); err != nil {
		return nil, err
	}
	return &group, nil
}

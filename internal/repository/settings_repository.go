package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kittisak-dev/timetable-api/internal/models"
)

// SettingsRepository reads the single scheduler settings row.
type SettingsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sqlx.DB, logger *zap.Logger) *SettingsRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsRepository{db: db, logger: logger}
}

// Get returns the scheduling settings, falling back to defaults when the
// row is missing or unreadable. Settings never fail a generation run.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	const query = `SELECT days, timeslots_per_day, avoid_lunch, lunch_slot, spread_days, strict_room_tag, balance_teachers FROM scheduler_settings LIMIT 1`
	var settings models.Settings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("falling back to default scheduler settings", zap.Error(err))
		}
		return models.DefaultSettings(), nil
	}
	settings.Normalize()
	return settings, nil
}

package models

// Settings is the scheduling configuration consumed by the generator.
// It is stored as a single row and defaulted field by field when absent.
type Settings struct {
	Days            int  `db:"days" json:"days"`
	TimeslotsPerDay int  `db:"timeslots_per_day" json:"timeslots_per_day"`
	AvoidLunch      bool `db:"avoid_lunch" json:"avoidLunch"`
	LunchSlot       int  `db:"lunch_slot" json:"lunchSlot"`
	SpreadDays      bool `db:"spread_days" json:"spreadDays"`
	StrictRoomTag   bool `db:"strict_room_tag" json:"strictRoomTag"`
	BalanceTeachers bool `db:"balance_teachers" json:"balanceTeachers"`
}

// DefaultSettings returns the scheduling defaults: a five day week of eight
// slots with the lunch break on slot index 4 and every soft preference on.
func DefaultSettings() Settings {
	return Settings{
		Days:            5,
		TimeslotsPerDay: 8,
		AvoidLunch:      true,
		LunchSlot:       4,
		SpreadDays:      true,
		StrictRoomTag:   true,
		BalanceTeachers: true,
	}
}

// Normalize repairs out-of-range values in place instead of failing.
func (s *Settings) Normalize() {
	if s.Days <= 0 {
		s.Days = 5
	}
	if s.TimeslotsPerDay <= 0 {
		s.TimeslotsPerDay = 8
	}
	if s.LunchSlot < 0 || s.LunchSlot >= s.TimeslotsPerDay {
		s.LunchSlot = 4
		if s.LunchSlot >= s.TimeslotsPerDay {
			s.LunchSlot = s.TimeslotsPerDay / 2
		}
	}
}

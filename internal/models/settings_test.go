package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 5, s.Days)
	assert.Equal(t, 8, s.TimeslotsPerDay)
	assert.True(t, s.AvoidLunch)
	assert.Equal(t, 4, s.LunchSlot)
	assert.True(t, s.SpreadDays)
	assert.True(t, s.StrictRoomTag)
	assert.True(t, s.BalanceTeachers)
}

func TestSettingsNormalizeRepairsRanges(t *testing.T) {
	s := Settings{Days: 0, TimeslotsPerDay: -1, LunchSlot: 99}
	s.Normalize()

	assert.Equal(t, 5, s.Days)
	assert.Equal(t, 8, s.TimeslotsPerDay)
	assert.Equal(t, 4, s.LunchSlot)
}

func TestSettingsNormalizeLunchWithinShortDay(t *testing.T) {
	s := Settings{Days: 5, TimeslotsPerDay: 3, LunchSlot: 7}
	s.Normalize()

	assert.Less(t, s.LunchSlot, s.TimeslotsPerDay)
	assert.GreaterOrEqual(t, s.LunchSlot, 0)
}

package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Teacher represents an instructor record.
//
// MaxPerDay is a soft cap recorded on the entity but intentionally not
// enforced by the placement search.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	MaxPerDay      int            `db:"max_per_day" json:"max_per_day"`
	UnavailableRaw types.JSONText `db:"unavailable" json:"unavailable,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	// Unavailable is the normalized form of UnavailableRaw, populated by
	// NormalizeUnavailability when the teacher is loaded.
	Unavailable []UnavailableInterval `db:"-" json:"-"`
}

// UnavailableInterval is one blocked teaching window.
type UnavailableInterval struct {
	Day      int `json:"day"`
	Slot     int `json:"slot"`
	Duration int `json:"duration,omitempty"`
}

// NormalizeUnavailability decodes UnavailableRaw into the interval list.
// Three historical encodings are accepted: an explicit interval list, a
// per-day boolean matrix, and a day-keyed slot-list map. Decoding happens
// once at load time so availability queries never re-sniff the payload.
func (t *Teacher) NormalizeUnavailability() error {
	intervals, err := DecodeUnavailability(t.UnavailableRaw)
	if err != nil {
		return fmt.Errorf("teacher %s: %w", t.ID, err)
	}
	t.Unavailable = intervals
	return nil
}

// IsUnavailable reports whether the teacher is blocked anywhere in the
// given (day, start, duration) window.
func (t *Teacher) IsUnavailable(day, start, duration int) bool {
	for _, u := range t.Unavailable {
		dur := u.Duration
		if dur <= 0 {
			dur = 1
		}
		if Overlaps(day, start, duration, u.Day, u.Slot, dur) {
			return true
		}
	}
	return false
}

// DecodeUnavailability normalizes any of the accepted encodings into a
// sorted interval list. Empty or null input yields no intervals.
func DecodeUnavailability(raw []byte) ([]UnavailableInterval, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []UnavailableInterval
	if err := json.Unmarshal(raw, &list); err == nil {
		return sortIntervals(list), nil
	}

	var matrix [][]bool
	if err := json.Unmarshal(raw, &matrix); err == nil {
		var out []UnavailableInterval
		for day, row := range matrix {
			out = append(out, slotsToIntervals(day, row)...)
		}
		return sortIntervals(out), nil
	}

	var byDay map[string][]int
	if err := json.Unmarshal(raw, &byDay); err == nil {
		var out []UnavailableInterval
		for key, slots := range byDay {
			day, convErr := strconv.Atoi(key)
			if convErr != nil {
				continue
			}
			row := make([]bool, 0)
			for _, s := range slots {
				if s < 0 {
					continue
				}
				for len(row) <= s {
					row = append(row, false)
				}
				row[s] = true
			}
			out = append(out, slotsToIntervals(day, row)...)
		}
		return sortIntervals(out), nil
	}

	return nil, fmt.Errorf("unrecognized unavailability encoding: %s", string(raw))
}

// slotsToIntervals coalesces consecutive blocked slots of one day into
// intervals.
func slotsToIntervals(day int, row []bool) []UnavailableInterval {
	var out []UnavailableInterval
	start := -1
	for slot := 0; slot <= len(row); slot++ {
		blocked := slot < len(row) && row[slot]
		switch {
		case blocked && start < 0:
			start = slot
		case !blocked && start >= 0:
			out = append(out, UnavailableInterval{Day: day, Slot: start, Duration: slot - start})
			start = -1
		}
	}
	return out
}

func sortIntervals(list []UnavailableInterval) []UnavailableInterval {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Day != list[j].Day {
			return list[i].Day < list[j].Day
		}
		return list[i].Slot < list[j].Slot
	})
	return list
}

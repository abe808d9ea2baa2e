package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUnavailabilityIntervalList(t *testing.T) {
	raw := []byte(`[{"day":1,"slot":2,"duration":2},{"day":0,"slot":5}]`)

	intervals, err := DecodeUnavailability(raw)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.Equal(t, UnavailableInterval{Day: 0, Slot: 5}, intervals[0])
	assert.Equal(t, UnavailableInterval{Day: 1, Slot: 2, Duration: 2}, intervals[1])
}

func TestDecodeUnavailabilityBoolMatrix(t *testing.T) {
	// Day 0: slots 1-3 blocked as one run; day 1: slot 0 alone.
	raw := []byte(`[[false,true,true,true,false],[true,false]]`)

	intervals, err := DecodeUnavailability(raw)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.Equal(t, UnavailableInterval{Day: 0, Slot: 1, Duration: 3}, intervals[0])
	assert.Equal(t, UnavailableInterval{Day: 1, Slot: 0, Duration: 1}, intervals[1])
}

func TestDecodeUnavailabilityDayMap(t *testing.T) {
	raw := []byte(`{"2":[0,1,4],"0":[3]}`)

	intervals, err := DecodeUnavailability(raw)
	require.NoError(t, err)
	require.Len(t, intervals, 3)
	assert.Equal(t, UnavailableInterval{Day: 0, Slot: 3, Duration: 1}, intervals[0])
	assert.Equal(t, UnavailableInterval{Day: 2, Slot: 0, Duration: 2}, intervals[1])
	assert.Equal(t, UnavailableInterval{Day: 2, Slot: 4, Duration: 1}, intervals[2])
}

func TestDecodeUnavailabilityEmptyAndNull(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("null")} {
		intervals, err := DecodeUnavailability(raw)
		require.NoError(t, err)
		assert.Empty(t, intervals)
	}
}

func TestDecodeUnavailabilityRejectsGarbage(t *testing.T) {
	_, err := DecodeUnavailability([]byte(`"busy on mondays"`))
	assert.Error(t, err)
}

func TestTeacherIsUnavailable(t *testing.T) {
	teacher := Teacher{Unavailable: []UnavailableInterval{{Day: 1, Slot: 2, Duration: 2}}}

	assert.True(t, teacher.IsUnavailable(1, 3, 1))
	assert.True(t, teacher.IsUnavailable(1, 1, 2))
	assert.False(t, teacher.IsUnavailable(1, 4, 1))
	assert.False(t, teacher.IsUnavailable(0, 2, 2))
}

func TestNormalizeUnavailabilityWrapsTeacherID(t *testing.T) {
	teacher := Teacher{ID: "t-9", UnavailableRaw: []byte(`42`)}

	err := teacher.NormalizeUnavailability()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t-9")
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlapsDisjointDays(t *testing.T) {
	assert.False(t, Overlaps(0, 2, 2, 1, 2, 2))
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	// [2,4) and [4,5) share only the boundary, which is not a conflict.
	assert.False(t, Overlaps(0, 2, 2, 0, 4, 1))
	// [2,4) and [3,4) intersect.
	assert.True(t, Overlaps(0, 2, 2, 0, 3, 1))
}

func TestOverlapsSymmetry(t *testing.T) {
	cases := [][6]int{
		{0, 0, 1, 0, 0, 1},
		{0, 2, 2, 0, 3, 1},
		{1, 5, 3, 1, 7, 2},
		{2, 0, 4, 2, 4, 1},
	}
	for _, c := range cases {
		forward := Overlaps(c[0], c[1], c[2], c[3], c[4], c[5])
		backward := Overlaps(c[3], c[4], c[5], c[0], c[1], c[2])
		assert.Equal(t, forward, backward, "overlap must be symmetric for %v", c)
	}
}

func TestOverlapsZeroDurationCountsAsOne(t *testing.T) {
	assert.True(t, Overlaps(0, 3, 0, 0, 3, 0))
	assert.False(t, Overlaps(0, 3, 0, 0, 4, 0))
}

func TestAssignmentOverlapsWith(t *testing.T) {
	a := Assignment{Day: 0, Slot: 2, Duration: 2}
	b := Assignment{Day: 0, Slot: 3, Duration: 1}
	c := Assignment{Day: 0, Slot: 4, Duration: 2}

	assert.True(t, a.OverlapsWith(b))
	assert.True(t, b.OverlapsWith(a))
	assert.False(t, a.OverlapsWith(c))
}

func TestTimetablesFlattenOrdersByGroup(t *testing.T) {
	tables := Timetables{
		"CT-2": {{ClassGroup: "CT-2", SubjectID: "s2"}},
		"CT-1": {{ClassGroup: "CT-1", SubjectID: "s1"}, {ClassGroup: "CT-1", SubjectID: "s3"}},
	}

	flat := tables.Flatten()
	assert.Len(t, flat, 3)
	assert.Equal(t, "CT-1", flat[0].ClassGroup)
	assert.Equal(t, "CT-1", flat[1].ClassGroup)
	assert.Equal(t, "CT-2", flat[2].ClassGroup)
}

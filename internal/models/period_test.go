package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPeriod(start, end DayTime) Period {
	return Period{RoomID: "r1", Weekday: Monday, StartTime: start, EndTime: end}
}

func TestPeriodOverlaps(t *testing.T) {
	base := testPeriod(480, 540) // 08:00-09:00

	assert.True(t, base.Overlaps(testPeriod(500, 520)), "contained")
	assert.True(t, base.Overlaps(testPeriod(450, 600)), "containing")
	assert.True(t, base.Overlaps(testPeriod(530, 600)), "partial")
	assert.True(t, base.Overlaps(base), "identical")
}

func TestPeriodOverlapsTouchingEndpoints(t *testing.T) {
	base := testPeriod(480, 540)

	// Inclusive comparison: sharing a single minute boundary is a clash.
	assert.True(t, base.Overlaps(testPeriod(540, 600)))
	assert.True(t, base.Overlaps(testPeriod(420, 480)))
}

func TestPeriodOverlapsDisjoint(t *testing.T) {
	base := testPeriod(480, 540)

	assert.False(t, base.Overlaps(testPeriod(541, 600)))
	assert.False(t, base.Overlaps(testPeriod(400, 479)))
}

func TestPeriodConflictError(t *testing.T) {
	err := &PeriodConflictError{Message: "room already booked"}
	assert.Equal(t, "room already booked", err.Error())

	var nilErr *PeriodConflictError
	assert.Equal(t, "<nil>", nilErr.Error())
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayTime(t *testing.T) {
	parsed, err := ParseDayTime("08:05")
	require.NoError(t, err)
	assert.Equal(t, DayTime(8*60+5), parsed)

	parsed, err = ParseDayTime("00:00")
	require.NoError(t, err)
	assert.Equal(t, DayTime(0), parsed)

	parsed, err = ParseDayTime("23:59")
	require.NoError(t, err)
	assert.Equal(t, DayTime(23*60+59), parsed)
}

func TestParseDayTimeRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "eight", "8", "24:00", "12:60", "-1:30", "08:00xyz", "1:2:3", "08:0a", "0b:30"} {
		_, err := ParseDayTime(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDayTimeString(t *testing.T) {
	assert.Equal(t, "06:45", DayTime(6*60+45).String())
	assert.Equal(t, "00:05", DayTime(5).String())
	assert.Equal(t, "21:45", DayTime(21*60+45).String())
}

func TestDayTimeJSONRoundTrip(t *testing.T) {
	encoded, err := json.Marshal(DayTime(9*60 + 30))
	require.NoError(t, err)
	assert.Equal(t, `"09:30"`, string(encoded))

	var decoded DayTime
	require.NoError(t, json.Unmarshal([]byte(`"14:15"`), &decoded))
	assert.Equal(t, DayTime(14*60+15), decoded)

	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &decoded))
}

func TestDayTimeScan(t *testing.T) {
	var v DayTime
	require.NoError(t, v.Scan(int64(480)))
	assert.Equal(t, DayTime(480), v)

	require.NoError(t, v.Scan("09:15"))
	assert.Equal(t, DayTime(9*60+15), v)

	require.NoError(t, v.Scan([]byte("10:30")))
	assert.Equal(t, DayTime(10*60+30), v)

	assert.Error(t, v.Scan(3.14))
}

func TestNormalizeWeekday(t *testing.T) {
	assert.Equal(t, Monday, NormalizeWeekday("monday"))
	assert.Equal(t, Saturday, NormalizeWeekday(" Saturday "))
	assert.Equal(t, Weekday("FUNDAY"), NormalizeWeekday("funday"))
}

func TestWeekdaySchedulable(t *testing.T) {
	for _, day := range SchedulableWeekdays {
		assert.True(t, day.Schedulable(), "day %s", day)
	}
	assert.False(t, Sunday.Schedulable())
	assert.False(t, Weekday("FUNDAY").Schedulable())
	assert.True(t, Sunday.Known())
}

func TestWeekdayOrder(t *testing.T) {
	assert.Equal(t, 0, Monday.Order())
	assert.Equal(t, 5, Saturday.Order())
	assert.Less(t, Tuesday.Order(), Friday.Order())
	assert.Greater(t, Sunday.Order(), Saturday.Order())
	assert.Greater(t, Weekday("FUNDAY").Order(), Sunday.Order())
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(Monday)
	assert.Equal(t, "06:45", start.String())
	assert.Equal(t, "21:45", end.String())

	start, end = DayBounds(Saturday)
	assert.Equal(t, "06:45", start.String())
	assert.Equal(t, "15:45", end.String())
}

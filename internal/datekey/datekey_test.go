package datekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeShiftsToUTCPlusNine(t *testing.T) {
	// 15:30 UTC is already the next day in UTC+9.
	instant := time.Date(2024, time.March, 1, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, Key("2024-03-02"), Normalize(instant))

	ny := time.FixedZone("EST", -5*60*60)
	evening := time.Date(2024, time.March, 1, 20, 0, 0, 0, ny)
	assert.Equal(t, Key("2024-03-02"), Normalize(evening))

	morning := time.Date(2024, time.March, 1, 14, 59, 0, 0, time.UTC)
	assert.Equal(t, Key("2024-03-01"), Normalize(morning))
}

func TestTodayRoundTrip(t *testing.T) {
	today := Today()
	require.True(t, today.Valid())
	assert.Equal(t, today, Normalize(today.Time()))
}

func TestLocalUsesWallClock(t *testing.T) {
	ny := time.FixedZone("EST", -5*60*60)
	evening := time.Date(2024, time.March, 1, 20, 0, 0, 0, ny)
	assert.Equal(t, Key("2024-03-01"), Local(evening))

	// Keys rendered back to UTC+9 midnight keep their date.
	for _, k := range []Key{"2024-03-01", "2024-12-31", "2024-02-29"} {
		assert.Equal(t, k, Local(k.Time()))
	}
}

func TestParse(t *testing.T) {
	k, err := Parse(" 2024-01-10 ")
	require.NoError(t, err)
	assert.Equal(t, Key("2024-01-10"), k)

	_, err = Parse("2024-13-01")
	assert.Error(t, err)
	_, err = Parse("10.01.2024")
	assert.Error(t, err)

	assert.False(t, Key("2024-02-30").Valid())
	assert.True(t, Key("2024-02-29").Valid())
}

func TestWeekStart(t *testing.T) {
	cases := map[Key]Key{
		"2024-03-03": "2024-03-03", // Sunday
		"2024-03-09": "2024-03-03", // Saturday
		"2024-03-01": "2024-02-25", // Friday, week spans two months
		"2024-01-02": "2023-12-31",
	}
	for in, want := range cases {
		assert.Equal(t, want, WeekStart(in), "week start of %s", in)
	}
}

func TestMonthKeyAndShift(t *testing.T) {
	assert.Equal(t, "2024-05", MonthKey("2024-05-17"))
	assert.Equal(t, "2025-01", ShiftMonth("2024-12", 1))
	assert.Equal(t, "2024-11", ShiftMonth("2024-12", -1))

	first, err := ParseMonth("2024-05")
	require.NoError(t, err)
	assert.Equal(t, Key("2024-05-01"), first)
}

func TestAddDaysAndOrdering(t *testing.T) {
	assert.Equal(t, Key("2024-03-01"), Key("2024-02-29").AddDays(1))
	assert.Equal(t, Key("2023-12-31"), Key("2024-01-01").AddDays(-1))
	assert.True(t, Key("2024-01-09") < Key("2024-01-10"))
	assert.Equal(t, time.Friday, Key("2024-03-01").Weekday())
}

func TestMonthGrid(t *testing.T) {
	// March 2024 starts on a Friday and ends on a Sunday.
	grid := MonthGrid("2024-03")
	require.Len(t, grid, 42)
	assert.Equal(t, Key("2024-02-25"), grid[0])
	assert.Equal(t, Key("2024-04-06"), grid[len(grid)-1])

	// February 2026 starts on a Sunday and ends on a Saturday.
	grid = MonthGrid("2026-02")
	require.Len(t, grid, 28)
	assert.Equal(t, Key("2026-02-01"), grid[0])

	assert.Nil(t, MonthGrid("garbage"))
}

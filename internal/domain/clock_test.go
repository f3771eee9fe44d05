package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClockTime(t *testing.T) {
	c, err := NewClockTime(23, 50)
	require.NoError(t, err)
	assert.Equal(t, "23:50", c.String())

	_, err = NewClockTime(24, 0)
	assert.True(t, IsValidation(err))
	_, err = NewClockTime(0, 60)
	assert.True(t, IsValidation(err))
}

func TestClockFromMinutes_Wraps(t *testing.T) {
	assert.Equal(t, ClockTime{Hour: 0, Minute: 10}, ClockFromMinutes(24*60+10))
	assert.Equal(t, ClockTime{Hour: 23, Minute: 0}, ClockFromMinutes(-60))
}

func TestClockTime_JSON(t *testing.T) {
	data, err := json.Marshal(ClockTime{Hour: 8, Minute: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `"08:05"`, string(data))

	var c ClockTime
	require.NoError(t, json.Unmarshal([]byte(`"17:45"`), &c))
	assert.Equal(t, ClockTime{Hour: 17, Minute: 45}, c)

	assert.Error(t, json.Unmarshal([]byte(`"5pm"`), &c))
}

func TestClockTime_On(t *testing.T) {
	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	got := ClockTime{Hour: 9, Minute: 30}.On(day)
	assert.Equal(t, time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC), got)
}

func TestParseCalendarDate(t *testing.T) {
	want := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

	cases := []string{
		"2025-03-14",
		"2025-03-14T00:00:00Z",
		"2025-03-14T23:30:00-05:00",
		"2025-03-14T08:15:00.000Z",
		"2025-03-14T08:15:00",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseCalendarDate(in, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseCalendarDate_KeepsWrittenDate(t *testing.T) {
	// A late-evening instant with a negative offset is the next day in UTC; the written date wins.
	got, err := ParseCalendarDate("2025-03-14T23:30:00-05:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Friday, got.Weekday())
}

func TestParseCalendarDate_Invalid(t *testing.T) {
	_, err := ParseCalendarDate("", time.UTC)
	assert.True(t, IsValidation(err))

	_, err = ParseCalendarDate("14/03/2025", time.UTC)
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "date: invalid date format")
}

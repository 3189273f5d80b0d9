package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "2025-06-10", false},
		{"leap day", "2024-02-29", false},
		{"impossible day", "2025-02-30", true},
		{"wrong format", "10/06/2025", true},
		{"time attached", "2025-06-10T00:00:00Z", true},
		{"empty", "", true},
		{"garbage", "soon", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDayKey(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:30 UTC on the 9th is already the 10th in JST.
	utc := time.Date(2025, 6, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-09", DayKey(utc))
	assert.Equal(t, "2025-06-10", DayKey(utc.In(loc)))
}

func TestDayDistance(t *testing.T) {
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		want int
	}{
		{"2025-06-10", 7},
		{"2025-06-06", 3},
		{"2025-06-03", 0},
		{"2025-06-02", -1},
		{"2025-05-31", -3},
		{"2025-07-03", 30},
	}
	for _, tt := range tests {
		got, err := DayDistance(tt.date, now)
		require.NoError(t, err, tt.date)
		assert.Equal(t, tt.want, got, tt.date)
	}
}

func TestDayDistanceAcrossMonthBoundary(t *testing.T) {
	now := time.Date(2025, 6, 28, 12, 0, 0, 0, time.UTC)
	got, err := DayDistance("2025-07-05", now)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestDayDistanceInvalidDate(t *testing.T) {
	_, err := DayDistance("not-a-date", time.Now())
	assert.Error(t, err)
}

func TestNewZoneClock(t *testing.T) {
	c, err := NewZoneClock("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", c.Now().Location().String())

	_, err = NewZoneClock("Not/AZone")
	assert.Error(t, err)
}

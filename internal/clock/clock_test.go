package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOfTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	instant := time.Date(2025, 6, 15, 1, 30, 45, 123, loc)

	date := DateOf(instant)

	// 01:30 UTC+2 is 23:30 the previous day in UTC.
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, time.UTC, date.Location())
}

func TestTodayUsesClockDate(t *testing.T) {
	clk := NewFakeClock(time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), Today(clk))
}

func TestFakeClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	clk := NewFakeClock(start)

	assert.Equal(t, start, clk.Now())

	clk.Advance(25 * time.Hour)
	assert.Equal(t, start.Add(25*time.Hour), clk.Now())
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), Today(clk))

	reset := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clk.Set(reset)
	assert.Equal(t, reset, clk.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	now := NewSystemClock().Now()
	assert.Equal(t, time.UTC, now.Location())
}

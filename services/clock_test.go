package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayBucket(t *testing.T) {
	// 任意时刻截断到UTC零点
	instant := time.Date(2024, 3, 7, 18, 45, 12, 999, time.UTC)
	assert.Equal(t, day(2024, 3, 7), DayBucket(instant))

	// 非UTC时区先换算再截断
	loc := time.FixedZone("UTC+8", 8*3600)
	beijing := time.Date(2024, 3, 8, 6, 0, 0, 0, loc) // UTC 2024-03-07 22:00
	assert.Equal(t, day(2024, 3, 7), DayBucket(beijing))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 7, 0, 0, 1, 0, time.UTC)
	b := time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC)
	c := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestHoursUntilMidnightUTC(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	assert.InDelta(t, 14.0, HoursUntilMidnightUTC(clock), 0.01)

	clock.Set(time.Date(2024, 3, 7, 23, 30, 0, 0, time.UTC))
	assert.InDelta(t, 0.5, HoursUntilMidnightUTC(clock), 0.01)
}

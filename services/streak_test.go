package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceStreak(t *testing.T) {
	today := day(2024, 3, 7)

	tests := []struct {
		name       string
		lastDay    *time.Time
		current    int
		longest    int
		wantStreak int
		wantLong   int
		wantBonus  int
	}{
		{
			name:       "首次打卡",
			lastDay:    nil,
			current:    0,
			longest:    0,
			wantStreak: 1,
			wantLong:   1,
			wantBonus:  0,
		},
		{
			name:       "昨天打过则加一",
			lastDay:    dayPtr(2024, 3, 6),
			current:    3,
			longest:    5,
			wantStreak: 4,
			wantLong:   5,
			wantBonus:  0,
		},
		{
			name:       "中断后重置为一",
			lastDay:    dayPtr(2024, 3, 1),
			current:    5,
			longest:    5,
			wantStreak: 1,
			wantLong:   5,
			wantBonus:  0,
		},
		{
			name:       "未来日期也重置为一",
			lastDay:    dayPtr(2024, 3, 20),
			current:    5,
			longest:    5,
			wantStreak: 1,
			wantLong:   5,
			wantBonus:  0,
		},
		{
			name:       "达到7天里程碑",
			lastDay:    dayPtr(2024, 3, 6),
			current:    6,
			longest:    6,
			wantStreak: 7,
			wantLong:   7,
			wantBonus:  100,
		},
		{
			name:       "达到30天里程碑",
			lastDay:    dayPtr(2024, 3, 6),
			current:    29,
			longest:    29,
			wantStreak: 30,
			wantLong:   30,
			wantBonus:  500,
		},
		{
			name:       "达到90天里程碑",
			lastDay:    dayPtr(2024, 3, 6),
			current:    89,
			longest:    100,
			wantStreak: 90,
			wantLong:   100,
			wantBonus:  1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStreak, gotLong, gotBonus := AdvanceStreak(tt.lastDay, tt.current, tt.longest, today)
			assert.Equal(t, tt.wantStreak, gotStreak)
			assert.Equal(t, tt.wantLong, gotLong)
			assert.Equal(t, tt.wantBonus, gotBonus)
		})
	}
}

// 最长连续天数只增不减
func TestAdvanceStreakLongestMonotone(t *testing.T) {
	lastDay := dayPtr(2024, 3, 6)
	_, longest, _ := AdvanceStreak(lastDay, 2, 10, day(2024, 3, 7))
	assert.Equal(t, 10, longest)

	_, longest, _ = AdvanceStreak(lastDay, 10, 10, day(2024, 3, 7))
	assert.Equal(t, 11, longest)
}

func TestStreakBonus(t *testing.T) {
	assert.Equal(t, 100, StreakBonus(7))
	assert.Equal(t, 500, StreakBonus(30))
	assert.Equal(t, 1500, StreakBonus(90))
	assert.Equal(t, 0, StreakBonus(1))
	assert.Equal(t, 0, StreakBonus(8))
	assert.Equal(t, 0, StreakBonus(29))
}

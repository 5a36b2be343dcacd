package services

import "time"

// Clock 时间来源抽象，核心逻辑不允许直接调用 time.Now
// 测试中注入固定时钟，否则按天去重的规则无法验证
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock 返回系统时钟
func NewRealClock() Clock {
	return realClock{}
}

// DayBucket 把时刻截断到UTC零点，作为"日"的唯一键
// 所有打卡日期比较只用日桶，不用原始时刻
func DayBucket(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today 当前UTC日桶
func Today(clock Clock) time.Time {
	return DayBucket(clock.Now())
}

// SameDay 判断两个时刻是否落在同一UTC日
func SameDay(a, b time.Time) bool {
	return DayBucket(a).Equal(DayBucket(b))
}

// HoursUntilMidnightUTC 距离UTC零点还剩多少小时
func HoursUntilMidnightUTC(clock Clock) float64 {
	now := clock.Now().UTC()
	midnight := DayBucket(now).Add(24 * time.Hour)
	return midnight.Sub(now).Hours()
}

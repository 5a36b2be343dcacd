package services

import "time"

// 连续打卡里程碑奖励表
var streakBonusTable = map[int]int{
	7:  100,
	30: 500,
	90: 1500,
}

// StreakBonus 返回达到某连续天数时的奖励币数，非里程碑返回0
func StreakBonus(streak int) int {
	return streakBonusTable[streak]
}

// AdvanceStreak 纯函数：根据上次打卡日推进连续天数
// lastDay 为空表示首次打卡；昨天打过则+1；更早或未来日期一律重置为1
// 当天重复打卡不会走到这里，唯一索引已经拦截
func AdvanceStreak(lastDay *time.Time, current, longest int, today time.Time) (newStreak, newLongest, bonus int) {
	today = DayBucket(today)

	switch {
	case lastDay == nil:
		newStreak = 1
	case DayBucket(*lastDay).Equal(today.AddDate(0, 0, -1)):
		newStreak = current + 1
	default:
		newStreak = 1
	}

	newLongest = longest
	if newStreak > newLongest {
		newLongest = newStreak
	}

	return newStreak, newLongest, StreakBonus(newStreak)
}

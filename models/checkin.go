package models

import "time"

// 打卡来源
const (
	SourceWeb      = "web"
	SourceMobile   = "mobile"
	SourceSlack    = "slack"
	SourceWhatsapp = "whatsapp"
)

// CheckIn 每日打卡记录
// UserID + DayBucket 唯一索引保证每人每天最多一条，并发提交只有一个赢家
type CheckIn struct {
	ID               string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID           string    `gorm:"type:varchar(50);index:idx_user_day,unique;index:idx_user_created" json:"userId"`
	DayBucket        time.Time `gorm:"type:date;index:idx_user_day,unique;index:idx_day_mood" json:"dayBucket"`
	Mood             int       `gorm:"index:idx_day_mood" json:"mood"` // 1..5
	Feedback         string    `gorm:"type:varchar(500)" json:"feedback"`
	Source           string    `gorm:"type:varchar(20);default:web" json:"source"`
	HappyCoinsEarned int       `gorm:"default:0" json:"happyCoinsEarned"` // 写入时冻结
	StreakAtCheckIn  int       `gorm:"default:1" json:"streakAtCheckIn"`
	CreatedAt        time.Time `gorm:"index:idx_user_created,sort:desc" json:"createdAt"`
}

func (CheckIn) TableName() string {
	return "checkins"
}

package models

import "time"

// 成就判定条件类型
const (
	CriteriaStreakDays          = "streak_days"
	CriteriaTotalCheckIns       = "total_checkins"
	CriteriaConsecutiveGoodMood = "consecutive_good_mood"
	CriteriaSurveyCompletion    = "survey_completion"
	CriteriaPeerRecognition     = "peer_recognition"
	CriteriaCustom              = "custom"
)

// Achievement 成就目录
type Achievement struct {
	ID               string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(200)" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	CriteriaType     string    `gorm:"type:varchar(30)" json:"criteriaType"`
	CriteriaValue    int       `json:"criteriaValue"` // 阈值，如连续7天
	HappyCoinsReward int       `json:"happyCoinsReward"`
	IsActive         bool      `gorm:"default:true" json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UserAchievement 用户已获得的成就
// UserID + AchievementID 唯一索引保证重复投递事件时的幂等
type UserAchievement struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(50);index:idx_user_achievement,unique" json:"userId"`
	AchievementID string    `gorm:"type:varchar(50);index:idx_user_achievement,unique" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

package models

import (
	"time"
)

// 风险等级
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// User 用户模型，wellness字段内嵌在用户表中
type User struct {
	ID            string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Username      string     `gorm:"type:varchar(100)" json:"username"`
	Email         string     `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	PasswordHash  string     `gorm:"type:varchar(255)" json:"-"`
	Department    string     `gorm:"type:varchar(100)" json:"department"`
	Role          string     `gorm:"type:varchar(20);default:employee" json:"role"` // employee / hr / admin
	EmailVerified bool       `gorm:"default:false" json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLogin     *time.Time `json:"last_login,omitempty"`

	// wellness聚合字段，只允许通过 AggregateService.UpdateAtomically 修改
	HappyCoins     int        `gorm:"default:0" json:"happyCoins"`
	CurrentStreak  int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak  int        `gorm:"default:0" json:"longestStreak"`
	LastCheckInDay *time.Time `json:"lastCheckInDay"`
	AverageMood    *float64   `json:"averageMood"`
	RiskLevel      string     `gorm:"type:varchar(10);default:low" json:"riskLevel"`
	JournalEntries int        `gorm:"default:0" json:"journalEntries"` // 日记总数（冗余计数）
	LastJournalDay *time.Time `json:"lastJournalDay"`
	Version        int        `gorm:"default:0" json:"-"` // 乐观锁版本号

	// 通知偏好
	CheckInReminder bool `gorm:"default:true" json:"checkInReminder"`
	RewardUpdates   bool `gorm:"default:true" json:"rewardUpdates"`
	SurveyReminder  bool `gorm:"default:true" json:"surveyReminder"`
	EmailChannel    bool `gorm:"default:true" json:"emailChannel"`
	SlackChannel    bool `gorm:"default:false" json:"slackChannel"`
}

func (u *User) GetDisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// WellnessSnapshot 返回聚合状态快照，打卡响应中回传给前端
func (u *User) WellnessSnapshot() map[string]interface{} {
	return map[string]interface{}{
		"happyCoins":     u.HappyCoins,
		"currentStreak":  u.CurrentStreak,
		"longestStreak":  u.LongestStreak,
		"lastCheckInDay": u.LastCheckInDay,
		"averageMood":    u.AverageMood,
		"riskLevel":      u.RiskLevel,
	}
}

package models

import "time"

// NotificationType 通知类型，封闭集合
// services/outbox.go 中的渠道路由对全部类型做穷尽switch
type NotificationType string

const (
	NotifyHappyCoinsEarned    NotificationType = "happy_coins_earned"
	NotifyCheckInCompleted    NotificationType = "check_in_completed"
	NotifyStreakWarning       NotificationType = "streak_warning"
	NotifyStreakLost          NotificationType = "streak_lost"
	NotifyStreakMilestone     NotificationType = "streak_milestone"
	NotifyAchievementEarned   NotificationType = "achievement_earned"
	NotifyMilestoneAchieved   NotificationType = "milestone_achieved"
	NotifySurveyAvailable     NotificationType = "survey_available"
	NotifyChallengeJoined     NotificationType = "challenge_joined"
	NotifyRewardRedeemed      NotificationType = "reward_redeemed"
	NotifyRecognitionReceived NotificationType = "recognition_received"
	NotifyRiskAlert           NotificationType = "risk_alert"
	NotifySystemUpdate        NotificationType = "system_update"
)

// AllNotificationTypes 全部通知类型，测试用来保证穷尽
var AllNotificationTypes = []NotificationType{
	NotifyHappyCoinsEarned,
	NotifyCheckInCompleted,
	NotifyStreakWarning,
	NotifyStreakLost,
	NotifyStreakMilestone,
	NotifyAchievementEarned,
	NotifyMilestoneAchieved,
	NotifySurveyAvailable,
	NotifyChallengeJoined,
	NotifyRewardRedeemed,
	NotifyRecognitionReceived,
	NotifyRiskAlert,
	NotifySystemUpdate,
}

// 通知优先级
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification 站内通知，始终落库展示，外部渠道投递失败不影响
type Notification struct {
	ID        string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID    string           `gorm:"type:varchar(50);index" json:"userId"`
	Type      NotificationType `gorm:"type:varchar(40)" json:"type"`
	Title     string           `gorm:"type:varchar(200)" json:"title"`
	Message   string           `gorm:"type:varchar(500)" json:"message"`
	Payload   string           `gorm:"type:text" json:"payload"` // JSON
	Priority  string           `gorm:"type:varchar(10);default:normal" json:"priority"`
	Read      bool             `gorm:"default:false" json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt *time.Time       `json:"expiresAt"`
}

// OutboxEvent 发件箱事件，与业务变更同事务写入，由独立分发器消费
type OutboxEvent struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string           `gorm:"type:varchar(50);index" json:"userId"`
	Type        NotificationType `gorm:"type:varchar(40)" json:"type"`
	Title       string           `gorm:"type:varchar(200)" json:"title"`
	Message     string           `gorm:"type:varchar(500)" json:"message"`
	Payload     string           `gorm:"type:text" json:"payload"`
	Priority    string           `gorm:"type:varchar(10);default:normal" json:"priority"`
	ExpiresAt   *time.Time       `json:"expiresAt"`
	Processed   bool             `gorm:"default:false;index" json:"processed"`
	CreatedAt   time.Time        `json:"createdAt"`
	ProcessedAt *time.Time       `json:"processedAt"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// CheckInRequest 打卡请求
type CheckInRequest struct {
	Mood     int    `json:"mood" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback" binding:"max=500"`
	Source   string `json:"source"`
}

// Validate 补充binding之外的校验
func (r *CheckInRequest) Validate() error {
	if r.Source == "" {
		r.Source = SourceWeb
	}
	switch r.Source {
	case SourceWeb, SourceMobile, SourceSlack, SourceWhatsapp:
	default:
		return fmt.Errorf("非法的打卡来源: %s", r.Source)
	}
	r.Feedback = strings.TrimSpace(r.Feedback)
	return nil
}

// UpdateFeedbackRequest 当日打卡反馈编辑请求
type UpdateFeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required,max=500"`
}

// RecognitionRequest 同事认可请求
type RecognitionRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Message  string `json:"message" binding:"max=500"`
}

func (r *RecognitionRequest) Validate() error {
	if _, ok := RecognitionCoinTable[r.Type]; !ok {
		return fmt.Errorf("非法的认可类型: %s", r.Type)
	}
	return nil
}

// JournalCreateRequest 创建日记请求
type JournalCreateRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Content  string   `json:"content" binding:"required"`
	Mood     int      `json:"mood" binding:"required,min=1,max=5"`
	Category string   `json:"category" binding:"max=50"`
	Tags     []string `json:"tags"`
	Privacy  string   `json:"privacy"`
}

func (r *JournalCreateRequest) Validate() error {
	if r.Privacy == "" {
		r.Privacy = JournalPrivate
	}
	if r.Privacy != JournalPrivate && r.Privacy != JournalShared {
		return fmt.Errorf("非法的隐私级别: %s", r.Privacy)
	}
	return nil
}

// JournalUpdateRequest 编辑日记请求
type JournalUpdateRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Mood    *int     `json:"mood"`
	Tags    []string `json:"tags"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department" binding:"max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PreferencesRequest 通知偏好更新请求
type PreferencesRequest struct {
	CheckInReminder *bool `json:"checkInReminder"`
	RewardUpdates   *bool `json:"rewardUpdates"`
	SurveyReminder  *bool `json:"surveyReminder"`
	EmailChannel    *bool `json:"emailChannel"`
	SlackChannel    *bool `json:"slackChannel"`
}

// RewardUpsertRequest 奖励目录管理请求（内部接口）
type RewardUpsertRequest struct {
	Name              string     `json:"name" binding:"required,max=200"`
	Description       string     `json:"description"`
	Category          string     `json:"category" binding:"max=50"`
	Cost              int        `json:"cost" binding:"required,min=1"`
	QuantityRemaining int        `json:"quantityRemaining"`
	AvailableFrom     *time.Time `json:"availableFrom"`
	AvailableUntil    *time.Time `json:"availableUntil"`
	IsActive          *bool      `json:"isActive"`
}

// AchievementUpsertRequest 成就目录管理请求（内部接口）
type AchievementUpsertRequest struct {
	Name             string `json:"name" binding:"required,max=200"`
	Description      string `json:"description"`
	CriteriaType     string `json:"criteriaType" binding:"required"`
	CriteriaValue    int    `json:"criteriaValue" binding:"min=0"`
	HappyCoinsReward int    `json:"happyCoinsReward" binding:"min=0"`
}

func (r *AchievementUpsertRequest) Validate() error {
	switch r.CriteriaType {
	case CriteriaStreakDays, CriteriaTotalCheckIns, CriteriaConsecutiveGoodMood,
		CriteriaSurveyCompletion, CriteriaPeerRecognition, CriteriaCustom:
		return nil
	}
	return fmt.Errorf("非法的成就条件类型: %s", r.CriteriaType)
}

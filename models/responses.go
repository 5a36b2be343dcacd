package models

import "time"

// APIResponse 统一响应结构
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// OK 成功响应
func OK(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// Fail 失败响应
func Fail(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}

// CheckInResult 打卡结果：新落库的打卡记录 + 聚合快照
type CheckInResult struct {
	CheckIn   *CheckIn               `json:"checkIn"`
	Wellness  map[string]interface{} `json:"wellness"`
	CoinsEarn int                    `json:"coinsEarned"`
}

// CheckInListResult 历史打卡分页结果
type CheckInListResult struct {
	Items      []CheckIn `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	MoodStats  MoodStats `json:"moodStats"`
}

// MoodStats 区间心情统计
type MoodStats struct {
	Average float64     `json:"average"`
	Counts  map[int]int `json:"counts"` // 各分值出现次数
}

// 趋势方向
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// MoodTrendPoint 单日趋势点
type MoodTrendPoint struct {
	Day     time.Time `json:"day"`
	Average float64   `json:"average"`
	Count   int       `json:"count"`
}

// MoodTrendResult 心情趋势结果
type MoodTrendResult struct {
	Days      int              `json:"days"`
	Points    []MoodTrendPoint `json:"points"`
	Direction string           `json:"direction"`
}

// AuthResult 登录/注册结果
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CompanyMoodStat 公司级单日心情统计（内部分析接口）
type CompanyMoodStat struct {
	Day          time.Time `json:"day"`
	AverageMood  float64   `json:"averageMood"`
	CheckInCount int       `json:"checkInCount"`
}

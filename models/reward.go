package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reward 奖励目录条目
type Reward struct {
	ID                string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name              string     `gorm:"type:varchar(200)" json:"name"`
	Description       string     `gorm:"type:text" json:"description"`
	Category          string     `gorm:"type:varchar(50)" json:"category"`
	Cost              int        `json:"cost"`                                  // 所需快乐币
	QuantityRemaining int        `gorm:"default:-1" json:"quantityRemaining"`   // -1 表示不限量
	AvailableFrom     *time.Time `json:"availableFrom"`
	AvailableUntil    *time.Time `json:"availableUntil"`
	IsActive          bool       `gorm:"default:true" json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Available 判断奖励当前是否可兑换
func (r *Reward) Available(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.AvailableFrom != nil && now.Before(*r.AvailableFrom) {
		return false
	}
	if r.AvailableUntil != nil && now.After(*r.AvailableUntil) {
		return false
	}
	return r.QuantityRemaining != 0
}

// 兑换单状态机: pending -> approved -> fulfilled，pending/approved 可取消
const (
	RedemptionPending   = "pending"
	RedemptionApproved  = "approved"
	RedemptionFulfilled = "fulfilled"
	RedemptionCancelled = "cancelled"
)

// Redemption 兑换单
type Redemption struct {
	ID             string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID         string     `gorm:"type:varchar(50);index:idx_redemption_user" json:"userId"`
	RewardID       string     `gorm:"type:varchar(50)" json:"rewardId"`
	CoinsSpent     int        `json:"coinsSpent"`
	RedemptionCode string     `gorm:"type:varchar(40);uniqueIndex" json:"redemptionCode"`
	Status         string     `gorm:"type:varchar(20);default:pending" json:"status"`
	CreatedAt      time.Time  `gorm:"index:idx_redemption_user,sort:desc" json:"createdAt"`
	ApprovedAt     *time.Time `json:"approvedAt"`
	FulfilledAt    *time.Time `json:"fulfilledAt"`
	CancelledAt    *time.Time `json:"cancelledAt"`
}

func (Redemption) TableName() string {
	return "redemptions"
}

// CanTransition 校验状态机转移是否合法，终态不允许再变更
func (r *Redemption) CanTransition(target string) bool {
	switch target {
	case RedemptionApproved:
		return r.Status == RedemptionPending
	case RedemptionFulfilled:
		return r.Status == RedemptionApproved
	case RedemptionCancelled:
		return r.Status == RedemptionPending || r.Status == RedemptionApproved
	}
	return false
}

// GenerateRedemptionCode 生成不透明兑换码（32位，去掉uuid连字符）
func GenerateRedemptionCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

package models

import "time"

// 快乐币变动来源常量
const (
	CoinSourceCheckIn     = "check_in"     // 每日打卡
	CoinSourceStreakBonus = "streak_bonus" // 连续打卡里程碑
	CoinSourceRecognition = "recognition"  // 同事认可
	CoinSourceAchievement = "achievement"  // 成就奖励
	CoinSourceRedemption  = "redemption"   // 兑换扣减
	CoinSourceRefund      = "refund"       // 取消兑换退款
)

// CoinTransaction 快乐币流水，只用于审计和分析
// Amount 为正负变动值，BalanceAfter 为变动后余额，可用于重放校验
type CoinTransaction struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"type:varchar(50);index:idx_coin_user" json:"userId"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balanceAfter"`
	Source       string    `gorm:"type:varchar(30)" json:"source"`
	ReferenceID  string    `gorm:"type:varchar(50)" json:"referenceId"` // 打卡/兑换单/认可等关联ID
	Remark       string    `gorm:"type:varchar(255)" json:"remark"`
	CreatedAt    time.Time `gorm:"index:idx_coin_user,sort:desc" json:"createdAt"`
}

func (CoinTransaction) TableName() string {
	return "coin_transactions"
}

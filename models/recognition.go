package models

import "time"

// 认可类型对应的奖励币数，唯一权威表
var RecognitionCoinTable = map[string]int{
	"kudos":      10,
	"gratitude":  15,
	"teamwork":   20,
	"innovation": 30,
	"leadership": 50,
}

// RecognitionCoins 返回认可类型对应的币数，未知类型返回0
func RecognitionCoins(recognitionType string) int {
	return RecognitionCoinTable[recognitionType]
}

// Recognition 同事认可记录，不可变
type Recognition struct {
	ID                string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	FromUserID        string    `gorm:"type:varchar(50);index" json:"fromUserId"`
	ToUserID          string    `gorm:"type:varchar(50);index" json:"toUserId"`
	Type              string    `gorm:"type:varchar(30)" json:"type"`
	Message           string    `gorm:"type:varchar(500)" json:"message"`
	HappyCoinsAwarded int       `json:"happyCoinsAwarded"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (Recognition) TableName() string {
	return "recognitions"
}

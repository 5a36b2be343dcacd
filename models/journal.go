package models

import "time"

// 日记隐私级别
const (
	JournalPrivate = "private"
	JournalShared  = "shared" // 对HR可见
)

// JournalEntry 日记条目，支持软删除，创建后24小时内可编辑
type JournalEntry struct {
	ID           string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID       string     `gorm:"type:varchar(50);index" json:"userId"`
	Title        string     `gorm:"type:varchar(200)" json:"title"`
	Content      string     `gorm:"type:text" json:"content"`
	Mood         int        `json:"mood"` // 1..5
	Category     string     `gorm:"type:varchar(50)" json:"category"`
	Tags         string     `gorm:"type:varchar(255)" json:"tags"` // 逗号分隔
	Privacy      string     `gorm:"type:varchar(20);default:private" json:"privacy"`
	WordCount    int        `json:"wordCount"`
	Deleted      bool       `gorm:"default:false" json:"-"` // 软删除标记
	CreatedAt    time.Time  `json:"createdAt"`
	LastModified time.Time  `json:"lastModified"`
	DeletedTime  *time.Time `json:"-"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

// Editable 创建后24小时内允许编辑
func (j *JournalEntry) Editable(now time.Time) bool {
	return now.Sub(j.CreatedAt) <= 24*time.Hour
}

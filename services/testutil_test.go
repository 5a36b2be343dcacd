package services

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"WellnessGo/utils"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeClock 测试用固定时钟
type fakeClock struct {
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.now = t
}

// newTestDB 每个测试用例独立的内存sqlite库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.InitTestLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))
	return db
}

// newTestUser 建一个带初始聚合状态的用户
func newTestUser(t *testing.T, db *gorm.DB, coins, streak, longest int, lastDay *time.Time) *models.User {
	t.Helper()
	user := &models.User{
		ID:              utils.GenerateID(),
		Username:        "测试用户",
		Email:           utils.GenerateID() + "@example.com",
		Role:            "employee",
		HappyCoins:      coins,
		CurrentStreak:   streak,
		LongestStreak:   longest,
		LastCheckInDay:  lastDay,
		RiskLevel:       models.RiskLevelLow,
		CheckInReminder: true,
		RewardUpdates:   true,
		SurveyReminder:  true,
		EmailChannel:    true,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func dayPtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// newTestStack 组装一套核心服务（无redis、无LLM）
func newTestStack(t *testing.T, clock Clock) (*gorm.DB, *AggregateService, *OutboxService, *CheckInService) {
	t.Helper()
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	outbox := NewOutboxService(db, clock, nil, nil, false)
	checkins := NewCheckInService(db, nil, clock, agg, outbox, nil)
	return db, agg, outbox, checkins
}

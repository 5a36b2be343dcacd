package services

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// 提醒窗口：距UTC零点 2 < 剩余小时 ≤ 18 时才发提醒
const (
	warnWindowMinHours = 2.0
	warnWindowMaxHours = 18.0
	lostNotifyMinimum  = 3 // 中断提醒只发给之前连续≥3天的用户
)

// StreakScanner 连续打卡定时扫描
// 每小时扫一遍待提醒用户，每天扫一遍已中断用户并重置streak。
// 逐用户独立处理，单个用户出错不影响整轮扫描。
type StreakScanner struct {
	db     *gorm.DB
	redis  *redis.Client
	clock  Clock
	agg    *AggregateService
	outbox *OutboxService

	cron *cron.Cron
}

func NewStreakScanner(db *gorm.DB, redisClient *redis.Client, clock Clock, agg *AggregateService, outbox *OutboxService) *StreakScanner {
	return &StreakScanner{
		db:     db,
		redis:  redisClient,
		clock:  clock,
		agg:    agg,
		outbox: outbox,
	}
}

// Start 按配置的cron表达式注册两类扫描任务
func (s *StreakScanner) Start(warnSpec, lostSpec string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(warnSpec, s.ScanWarnings); err != nil {
		return fmt.Errorf("注册提醒扫描任务失败: %w", err)
	}
	if _, err := s.cron.AddFunc(lostSpec, s.ScanLostStreaks); err != nil {
		return fmt.Errorf("注册中断扫描任务失败: %w", err)
	}
	s.cron.Start()
	config.Logger.Infow("连续打卡扫描已启动", "warnCron", warnSpec, "lostCron", lostSpec)
	return nil
}

// Stop 停止定时任务并等待在跑的扫描结束
func (s *StreakScanner) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// ScanWarnings 给今天还没打卡、streak面临中断的用户发提醒
// 每用户每天最多一条，redis SETNX做幂等，redis不可用时退化为查库
func (s *StreakScanner) ScanWarnings() {
	hoursLeft := HoursUntilMidnightUTC(s.clock)
	if hoursLeft <= warnWindowMinHours || hoursLeft > warnWindowMaxHours {
		return
	}
	today := Today(s.clock)

	var users []models.User
	if err := s.db.Where(
		"current_streak > 0 AND last_check_in_day < ? AND check_in_reminder = ?",
		today, true,
	).Find(&users).Error; err != nil {
		config.Logger.Errorw("提醒扫描查询失败", "error", err)
		return
	}

	for i := range users {
		user := &users[i]
		if !s.claimWarnOnce(user.ID, today) {
			continue
		}
		payload, _ := json.Marshal(map[string]interface{}{
			"currentStreak": user.CurrentStreak,
			"hoursLeft":     int(hoursLeft),
		})
		if err := s.outbox.Enqueue(nil, &models.OutboxEvent{
			UserID:  user.ID,
			Type:    models.NotifyStreakWarning,
			Title:   "别忘了今天的打卡",
			Message: fmt.Sprintf("你已连续打卡 %d 天，今天还没打卡，距离UTC零点还有 %d 小时", user.CurrentStreak, int(hoursLeft)),
			Payload: string(payload),
		}); err != nil {
			config.Logger.Errorw("打卡提醒入队失败", "userID", user.ID, "error", err)
		}
	}
}

// claimWarnOnce 抢占"今天已提醒"标记，抢到才发
func (s *StreakScanner) claimWarnOnce(userID string, today time.Time) bool {
	if s.redis != nil {
		key := fmt.Sprintf("streak:warn:%s:%s", userID, today.Format("2006-01-02"))
		ok, err := s.redis.SetNX(context.Background(), key, 1, 26*time.Hour).Result()
		if err == nil {
			return ok
		}
		config.Logger.Warnw("redis提醒去重失败，退化为查库", "error", err)
	}

	var count int64
	if err := s.db.Model(&models.OutboxEvent{}).
		Where("user_id = ? AND type = ? AND created_at >= ?",
			userID, models.NotifyStreakWarning, today).
		Count(&count).Error; err != nil {
		config.Logger.Errorw("提醒去重查询失败", "userID", userID, "error", err)
		return false
	}
	return count == 0
}

// ScanLostStreaks 每日一次：重置已经断掉的streak
// 凡是昨天之前就没再打卡的都重置，通知只发给之前连续≥3天的
func (s *StreakScanner) ScanLostStreaks() {
	today := Today(s.clock)
	yesterday := today.AddDate(0, 0, -1)

	var users []models.User
	if err := s.db.Where(
		"current_streak > 0 AND last_check_in_day < ?", yesterday,
	).Find(&users).Error; err != nil {
		config.Logger.Errorw("中断扫描查询失败", "error", err)
		return
	}

	for i := range users {
		user := &users[i]
		var prior int
		_, err := s.agg.UpdateAtomically(nil, user.ID, func(u *models.User) error {
			prior = u.CurrentStreak
			u.CurrentStreak = 0
			return nil
		})
		if err != nil {
			config.Logger.Errorw("重置streak失败", "userID", user.ID, "error", err)
			continue
		}
		if prior < lostNotifyMinimum {
			continue
		}

		payload, _ := json.Marshal(map[string]interface{}{"priorStreak": prior})
		if err := s.outbox.Enqueue(nil, &models.OutboxEvent{
			UserID:  user.ID,
			Type:    models.NotifyStreakLost,
			Title:   "连续打卡中断了",
			Message: fmt.Sprintf("之前连续打卡 %d 天的记录中断了，今天重新开始吧", prior),
			Payload: string(payload),
		}); err != nil {
			config.Logger.Errorw("中断通知入队失败", "userID", user.ID, "error", err)
		}
	}
}

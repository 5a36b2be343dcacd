package services

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"WellnessGo/utils"
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

// 外部渠道投递的单次超时
const channelTimeout = 5 * time.Second

// EmailSender 邮件渠道接口，实现方自行处理模板和收件人解析
type EmailSender interface {
	Send(ctx context.Context, user *models.User, n *models.Notification) error
}

// SlackSender Slack渠道接口
type SlackSender interface {
	Send(ctx context.Context, user *models.User, n *models.Notification) error
}

// EventHandler 业务事件消费者（成就评估器实现此接口）
type EventHandler interface {
	HandleEvent(event *models.OutboxEvent)
}

// OutboxService 通知发件箱
// 事件与业务变更同事务写入outbox_events，独立的分发循环消费：
// 站内通知与processed标记同事务落库，之后按用户偏好投递外部渠道。
// 外部渠道失败只记日志，站内通知照常保留展示。
type OutboxService struct {
	db           *gorm.DB
	clock        Clock
	email        EmailSender
	slack        SlackSender
	slackEnabled bool
	handler      EventHandler

	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewOutboxService(db *gorm.DB, clock Clock, email EmailSender, slack SlackSender, slackEnabled bool) *OutboxService {
	return &OutboxService{
		db:           db,
		clock:        clock,
		email:        email,
		slack:        slack,
		slackEnabled: slackEnabled,
		stopCh:       make(chan struct{}),
	}
}

// SetHandler 注册业务事件消费者
func (s *OutboxService) SetHandler(h EventHandler) {
	s.handler = h
}

// Enqueue 在调用方事务内写入事件行
// 业务提交则事件必达，业务回滚则事件一并消失
func (s *OutboxService) Enqueue(tx *gorm.DB, event *models.OutboxEvent) error {
	if tx == nil {
		tx = s.db
	}
	if event.Priority == "" {
		event.Priority = models.PriorityNormal
	}
	event.CreatedAt = s.clock.Now()
	return tx.Create(event).Error
}

// Start 启动分发循环
func (s *OutboxService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				// 退出前清空一次，保证已提交的事件不滞留
				s.DispatchPending()
				return
			case <-ticker.C:
				s.DispatchPending()
			}
		}
	}()
}

// Stop 停止分发循环
func (s *OutboxService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Wait 等待分发循环退出
func (s *OutboxService) Wait() {
	s.wg.Wait()
}

// DispatchPending 消费一批未处理事件，按id顺序保证单用户内的先后
func (s *OutboxService) DispatchPending() {
	var events []models.OutboxEvent
	if err := s.db.Where("processed = ?", false).
		Order("id ASC").Limit(50).Find(&events).Error; err != nil {
		config.Logger.Errorw("读取发件箱失败", "error", err)
		return
	}

	for i := range events {
		s.dispatchOne(&events[i])
	}
}

func (s *OutboxService) dispatchOne(event *models.OutboxEvent) {
	var user models.User
	if err := s.db.Where("id = ?", event.UserID).First(&user).Error; err != nil {
		// 用户已注销，事件直接标记处理完
		config.Logger.Warnw("发件箱事件找不到用户", "eventID", event.ID, "userID", event.UserID)
		s.markProcessed(event)
		return
	}

	// 站内通知与processed标记同事务写入：
	// 部分失败整体重试，不会重复落站内通知
	notification := &models.Notification{
		ID:        utils.GenerateID(),
		UserID:    event.UserID,
		Type:      event.Type,
		Title:     event.Title,
		Message:   event.Message,
		Payload:   event.Payload,
		Priority:  event.Priority,
		CreatedAt: s.clock.Now(),
		ExpiresAt: event.ExpiresAt,
	}
	now := s.clock.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		return tx.Model(&models.OutboxEvent{}).
			Where("id = ?", event.ID).
			Updates(map[string]interface{}{"processed": true, "processed_at": now}).Error
	})
	if err != nil {
		config.Logger.Errorw("写入站内通知失败", "eventID", event.ID, "error", err)
		return // 下一轮重试
	}

	// 外部渠道按偏好投递，失败只记日志
	if typeAllowedByPreference(&user, event.Type) {
		if s.email != nil && user.EmailChannel {
			s.sendWithTimeout("email", func(ctx context.Context) error {
				return s.email.Send(ctx, &user, notification)
			})
		}
		if s.slack != nil && s.slackEnabled && user.SlackChannel {
			s.sendWithTimeout("slack", func(ctx context.Context) error {
				return s.slack.Send(ctx, &user, notification)
			})
		}
	}

	// 业务事件消费（成就评估）。评估从当前状态重算且奖励幂等，
	// 这里失败由下一个触发事件补上
	if s.handler != nil {
		s.handler.HandleEvent(event)
	}
}

func (s *OutboxService) sendWithTimeout(channel string, send func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), channelTimeout)
	defer cancel()
	if err := send(ctx); err != nil {
		config.Logger.Warnw("外部渠道投递失败", "channel", channel, "error", err)
	}
}

func (s *OutboxService) markProcessed(event *models.OutboxEvent) {
	now := s.clock.Now()
	if err := s.db.Model(&models.OutboxEvent{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{"processed": true, "processed_at": now}).Error; err != nil {
		config.Logger.Errorw("标记事件已处理失败", "eventID", event.ID, "error", err)
	}
}

// typeAllowedByPreference 通知类型到用户偏好开关的映射
// 对封闭类型集合做穷尽switch，新增类型必须在这里表态
func typeAllowedByPreference(user *models.User, t models.NotificationType) bool {
	switch t {
	case models.NotifyHappyCoinsEarned:
		return user.RewardUpdates
	case models.NotifyCheckInCompleted, models.NotifyStreakWarning:
		return user.CheckInReminder
	case models.NotifySurveyAvailable:
		return user.SurveyReminder
	case models.NotifyStreakLost,
		models.NotifyStreakMilestone,
		models.NotifyAchievementEarned,
		models.NotifyMilestoneAchieved,
		models.NotifyChallengeJoined,
		models.NotifyRewardRedeemed,
		models.NotifyRecognitionReceived,
		models.NotifyRiskAlert,
		models.NotifySystemUpdate:
		return true
	}
	config.Logger.Errorw("未知通知类型", "type", t)
	return true
}

// LogEmailSender 邮件渠道的日志实现，真实SMTP接入在部署侧替换
type LogEmailSender struct{}

func (LogEmailSender) Send(ctx context.Context, user *models.User, n *models.Notification) error {
	config.Logger.Infow("投递邮件通知",
		"to", user.Email,
		"type", n.Type,
		"title", n.Title,
	)
	return nil
}

// LogSlackSender Slack渠道的日志实现
type LogSlackSender struct{}

func (LogSlackSender) Send(ctx context.Context, user *models.User, n *models.Notification) error {
	config.Logger.Infow("投递Slack通知",
		"user", user.ID,
		"type", n.Type,
		"title", n.Title,
	)
	return nil
}

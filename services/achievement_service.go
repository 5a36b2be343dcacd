package services

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"WellnessGo/utils"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// AchievementService 成就与里程碑评估器
// 消费发件箱事件，对每个命中的成就做insert-or-ignore，
// user_achievements唯一索引保证事件重放时的幂等
type AchievementService struct {
	db     *gorm.DB
	clock  Clock
	agg    *AggregateService
	outbox *OutboxService
}

func NewAchievementService(db *gorm.DB, clock Clock, agg *AggregateService, outbox *OutboxService) *AchievementService {
	return &AchievementService{db: db, clock: clock, agg: agg, outbox: outbox}
}

// HandleEvent 实现 EventHandler，分发器在通知落库后调用
func (s *AchievementService) HandleEvent(event *models.OutboxEvent) {
	switch event.Type {
	case models.NotifyCheckInCompleted,
		models.NotifyRecognitionReceived,
		models.NotifyRewardRedeemed:
		if err := s.Evaluate(event.UserID); err != nil {
			config.Logger.Errorw("成就评估失败", "userID", event.UserID, "error", err)
		}
	default:
		// 其余事件类型不触发成就评估
	}
}

// Evaluate 对用户评估全部启用中的成就
func (s *AchievementService) Evaluate(userID string) error {
	var achievements []models.Achievement
	if err := s.db.Where("is_active = ?", true).Find(&achievements).Error; err != nil {
		return err
	}
	if len(achievements) == 0 {
		return nil
	}

	user, err := s.agg.Read(nil, userID)
	if err != nil {
		return err
	}

	for i := range achievements {
		met, err := s.criteriaMet(user, &achievements[i])
		if err != nil {
			return err
		}
		if !met {
			continue
		}
		if err := s.award(user.ID, &achievements[i]); err != nil {
			return err
		}
	}
	return nil
}

// criteriaMet 判定成就条件是否满足
func (s *AchievementService) criteriaMet(user *models.User, ach *models.Achievement) (bool, error) {
	switch ach.CriteriaType {
	case models.CriteriaStreakDays:
		return user.LongestStreak >= ach.CriteriaValue, nil

	case models.CriteriaTotalCheckIns:
		var count int64
		if err := s.db.Model(&models.CheckIn{}).
			Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return false, err
		}
		return count >= int64(ach.CriteriaValue), nil

	case models.CriteriaConsecutiveGoodMood:
		if ach.CriteriaValue < 1 {
			return false, nil
		}
		var moods []int
		if err := s.db.Model(&models.CheckIn{}).
			Where("user_id = ?", user.ID).
			Order("day_bucket DESC").Limit(ach.CriteriaValue).
			Pluck("mood", &moods).Error; err != nil {
			return false, err
		}
		if len(moods) < ach.CriteriaValue {
			return false, nil
		}
		for _, m := range moods {
			if m < 4 {
				return false, nil
			}
		}
		return true, nil

	case models.CriteriaPeerRecognition:
		var count int64
		if err := s.db.Model(&models.Recognition{}).
			Where("to_user_id = ?", user.ID).Count(&count).Error; err != nil {
			return false, err
		}
		return count >= int64(ach.CriteriaValue), nil

	case models.CriteriaSurveyCompletion, models.CriteriaCustom:
		// 问卷与自定义条件由外部系统评估，核心里永不命中
		return false, nil
	}

	config.Logger.Warnw("未知成就条件类型", "achievementID", ach.ID, "type", ach.CriteriaType)
	return false, nil
}

// award insert-or-ignore，只有首次插入才发币和通知
func (s *AchievementService) award(userID string, ach *models.Achievement) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		row := &models.UserAchievement{
			ID:            utils.GenerateID(),
			UserID:        userID,
			AchievementID: ach.ID,
			EarnedAt:      s.clock.Now(),
		}
		if err := tx.Create(row).Error; err != nil {
			if models.IsDuplicateKeyError(err) {
				return nil // 已经拿过，幂等返回
			}
			return err
		}

		if ach.HappyCoinsReward > 0 {
			user, err := s.agg.UpdateAtomically(tx, userID, func(u *models.User) error {
				u.HappyCoins += ach.HappyCoinsReward
				return nil
			})
			if err != nil {
				return err
			}
			if err := s.agg.RecordCoinTransaction(tx, userID, ach.HappyCoinsReward, user.HappyCoins,
				models.CoinSourceAchievement, ach.ID, "成就奖励: "+ach.Name); err != nil {
				return err
			}
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"achievementId": ach.ID,
			"coins":         ach.HappyCoinsReward,
		})
		return s.outbox.Enqueue(tx, &models.OutboxEvent{
			UserID:   userID,
			Type:     models.NotifyAchievementEarned,
			Title:    "获得新成就",
			Message:  fmt.Sprintf("达成「%s」，奖励 %d 快乐币", ach.Name, ach.HappyCoinsReward),
			Payload:  string(payload),
			Priority: models.PriorityHigh,
		})
	})
}

// ListEarned 用户已获得的成就
func (s *AchievementService) ListEarned(userID string) ([]models.UserAchievement, error) {
	var earned []models.UserAchievement
	err := s.db.Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error
	return earned, err
}

// ListCatalog 成就目录
func (s *AchievementService) ListCatalog() ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := s.db.Where("is_active = ?", true).Find(&achievements).Error
	return achievements, err
}

// UpsertAchievement 成就目录管理（内部接口）
func (s *AchievementService) UpsertAchievement(achievementID string, req *models.AchievementUpsertRequest) (*models.Achievement, error) {
	ach := models.Achievement{
		Name:             req.Name,
		Description:      req.Description,
		CriteriaType:     req.CriteriaType,
		CriteriaValue:    req.CriteriaValue,
		HappyCoinsReward: req.HappyCoinsReward,
		IsActive:         true,
	}

	if achievementID == "" {
		ach.ID = utils.GenerateID()
		ach.CreatedAt = s.clock.Now()
		if err := s.db.Create(&ach).Error; err != nil {
			return nil, err
		}
		return &ach, nil
	}

	var existing models.Achievement
	if err := s.db.Where("id = ?", achievementID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("成就不存在")
		}
		return nil, err
	}
	ach.ID = existing.ID
	ach.CreatedAt = existing.CreatedAt
	if err := s.db.Save(&ach).Error; err != nil {
		return nil, err
	}
	return &ach, nil
}

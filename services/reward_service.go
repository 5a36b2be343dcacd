package services

import (
	"WellnessGo/models"
	"WellnessGo/utils"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// RewardService 快乐币经济：奖励目录、兑换状态机、退款
// 库存扣减与余额扣减、兑换单写入在同一事务，防止超卖
type RewardService struct {
	db     *gorm.DB
	clock  Clock
	agg    *AggregateService
	outbox *OutboxService
}

func NewRewardService(db *gorm.DB, clock Clock, agg *AggregateService, outbox *OutboxService) *RewardService {
	return &RewardService{db: db, clock: clock, agg: agg, outbox: outbox}
}

// ListRewards 奖励目录，onlyAvailable 时过滤掉不可兑换的
func (s *RewardService) ListRewards(onlyAvailable bool) ([]models.Reward, error) {
	var rewards []models.Reward
	if err := s.db.Order("created_at DESC").Find(&rewards).Error; err != nil {
		return nil, err
	}
	if !onlyAvailable {
		return rewards, nil
	}
	now := s.clock.Now()
	filtered := rewards[:0]
	for _, r := range rewards {
		if r.Available(now) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// GetReward 单个奖励
func (s *RewardService) GetReward(rewardID string) (*models.Reward, error) {
	var reward models.Reward
	if err := s.db.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("奖励不存在")
		}
		return nil, err
	}
	return &reward, nil
}

// Redeem 兑换奖励
// 顺序：校验可用性 -> 条件扣库存 -> 扣余额 -> 写兑换单，全部同事务
func (s *RewardService) Redeem(userID, rewardID string) (*models.Redemption, error) {
	now := s.clock.Now()

	var redemption *models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.Where("id = ?", rewardID).First(&reward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("奖励不存在")
			}
			return err
		}

		if !reward.Available(now) {
			return models.NewUnavailableError("奖励当前不可兑换")
		}

		// 限量奖励条件扣减，并发下只有库存足够的请求能通过
		if reward.QuantityRemaining > 0 {
			result := tx.Model(&models.Reward{}).
				Where("id = ? AND quantity_remaining > 0", rewardID).
				UpdateColumn("quantity_remaining", gorm.Expr("quantity_remaining - 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return models.NewUnavailableError("奖励已兑完")
			}
		}

		user, err := s.agg.UpdateAtomically(tx, userID, func(u *models.User) error {
			if u.HappyCoins < reward.Cost {
				return models.NewValidationError(
					fmt.Sprintf("快乐币不足，需要 %d，当前 %d", reward.Cost, u.HappyCoins))
			}
			u.HappyCoins -= reward.Cost
			return nil
		})
		if err != nil {
			return err
		}

		redemption = &models.Redemption{
			ID:             utils.GenerateID(),
			UserID:         userID,
			RewardID:       rewardID,
			CoinsSpent:     reward.Cost,
			RedemptionCode: models.GenerateRedemptionCode(),
			Status:         models.RedemptionPending,
			CreatedAt:      now,
		}
		if err := tx.Create(redemption).Error; err != nil {
			return err
		}

		if err := s.agg.RecordCoinTransaction(tx, userID, -reward.Cost, user.HappyCoins,
			models.CoinSourceRedemption, redemption.ID, "兑换 "+reward.Name); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"redemptionId": redemption.ID,
			"rewardId":     rewardID,
			"coinsSpent":   reward.Cost,
		})
		return s.outbox.Enqueue(tx, &models.OutboxEvent{
			UserID:  userID,
			Type:    models.NotifyRewardRedeemed,
			Title:   "兑换成功",
			Message: fmt.Sprintf("已兑换「%s」，消耗 %d 快乐币", reward.Name, reward.Cost),
			Payload: string(payload),
		})
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

// Cancel 取消兑换，只允许 pending/approved
// 全额退款；库存不回补，需要回补由目录管理者手工调整
func (s *RewardService) Cancel(userID, redemptionID string) (*models.Redemption, error) {
	var redemption models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", redemptionID).First(&redemption).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("兑换单不存在")
			}
			return err
		}
		if userID != "" && redemption.UserID != userID {
			return models.NewNotFoundError("兑换单不存在")
		}
		if !redemption.CanTransition(models.RedemptionCancelled) {
			return models.NewValidationError(
				fmt.Sprintf("当前状态 %s 不允许取消", redemption.Status))
		}

		user, err := s.agg.UpdateAtomically(tx, redemption.UserID, func(u *models.User) error {
			u.HappyCoins += redemption.CoinsSpent
			return nil
		})
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := tx.Model(&models.Redemption{}).Where("id = ?", redemption.ID).
			Updates(map[string]interface{}{
				"status":       models.RedemptionCancelled,
				"cancelled_at": now,
			}).Error; err != nil {
			return err
		}
		redemption.Status = models.RedemptionCancelled
		redemption.CancelledAt = &now

		return s.agg.RecordCoinTransaction(tx, redemption.UserID, redemption.CoinsSpent, user.HappyCoins,
			models.CoinSourceRefund, redemption.ID, "取消兑换退款")
	})
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// Approve 审核通过，只记时间戳，不动快乐币
func (s *RewardService) Approve(redemptionID string) (*models.Redemption, error) {
	return s.advanceStatus(redemptionID, models.RedemptionApproved)
}

// Fulfill 发放完成，终态
func (s *RewardService) Fulfill(redemptionID string) (*models.Redemption, error) {
	return s.advanceStatus(redemptionID, models.RedemptionFulfilled)
}

func (s *RewardService) advanceStatus(redemptionID, target string) (*models.Redemption, error) {
	var redemption models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", redemptionID).First(&redemption).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("兑换单不存在")
			}
			return err
		}
		if !redemption.CanTransition(target) {
			return models.NewValidationError(
				fmt.Sprintf("不允许从 %s 变更为 %s", redemption.Status, target))
		}

		now := s.clock.Now()
		updates := map[string]interface{}{"status": target}
		switch target {
		case models.RedemptionApproved:
			updates["approved_at"] = now
			redemption.ApprovedAt = &now
		case models.RedemptionFulfilled:
			updates["fulfilled_at"] = now
			redemption.FulfilledAt = &now
		}
		if err := tx.Model(&models.Redemption{}).Where("id = ?", redemption.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		redemption.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// ListRedemptions 用户兑换历史
func (s *RewardService) ListRedemptions(userID string) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&redemptions).Error
	return redemptions, err
}

// UpsertReward 奖励目录管理（内部接口）
func (s *RewardService) UpsertReward(rewardID string, req *models.RewardUpsertRequest) (*models.Reward, error) {
	reward := models.Reward{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Cost:              req.Cost,
		QuantityRemaining: req.QuantityRemaining,
		AvailableFrom:     req.AvailableFrom,
		AvailableUntil:    req.AvailableUntil,
		IsActive:          true,
	}
	if req.IsActive != nil {
		reward.IsActive = *req.IsActive
	}
	if req.QuantityRemaining == 0 {
		reward.QuantityRemaining = -1 // 缺省不限量
	}

	if rewardID == "" {
		reward.ID = utils.GenerateID()
		reward.CreatedAt = s.clock.Now()
		if err := s.db.Create(&reward).Error; err != nil {
			return nil, err
		}
		return &reward, nil
	}

	existing, err := s.GetReward(rewardID)
	if err != nil {
		return nil, err
	}
	reward.ID = existing.ID
	reward.CreatedAt = existing.CreatedAt
	if err := s.db.Save(&reward).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

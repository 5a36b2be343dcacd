package services

import (
	"WellnessGo/models"
	"WellnessGo/utils"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// RecognitionService 同事认可
// 给接收方加币，认可记录不可变；自己不能认可自己
type RecognitionService struct {
	db     *gorm.DB
	clock  Clock
	agg    *AggregateService
	outbox *OutboxService
}

func NewRecognitionService(db *gorm.DB, clock Clock, agg *AggregateService, outbox *OutboxService) *RecognitionService {
	return &RecognitionService{db: db, clock: clock, agg: agg, outbox: outbox}
}

// Send 发送认可，按类型给接收方加对应数量的快乐币
func (s *RecognitionService) Send(fromUserID string, req *models.RecognitionRequest) (*models.Recognition, error) {
	if fromUserID == req.ToUserID {
		return nil, models.NewValidationError("不能认可自己")
	}
	coins := models.RecognitionCoins(req.Type)
	if coins == 0 {
		return nil, models.NewValidationError("非法的认可类型: " + req.Type)
	}

	var sender models.User
	if err := s.db.Where("id = ?", fromUserID).First(&sender).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("发送者不存在")
		}
		return nil, err
	}

	var recognition *models.Recognition
	err := s.db.Transaction(func(tx *gorm.DB) error {
		recipient, err := s.agg.UpdateAtomically(tx, req.ToUserID, func(u *models.User) error {
			u.HappyCoins += coins
			return nil
		})
		if err != nil {
			if models.KindOf(err) == models.KindNotFound {
				return models.NewNotFoundError("接收者不存在")
			}
			return err
		}

		recognition = &models.Recognition{
			ID:                utils.GenerateID(),
			FromUserID:        fromUserID,
			ToUserID:          req.ToUserID,
			Type:              req.Type,
			Message:           req.Message,
			HappyCoinsAwarded: coins,
			CreatedAt:         s.clock.Now(),
		}
		if err := tx.Create(recognition).Error; err != nil {
			return err
		}

		if err := s.agg.RecordCoinTransaction(tx, req.ToUserID, coins, recipient.HappyCoins,
			models.CoinSourceRecognition, recognition.ID,
			fmt.Sprintf("收到来自 %s 的认可", sender.GetDisplayName())); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"recognitionId": recognition.ID,
			"fromUserId":    fromUserID,
			"type":          req.Type,
			"coins":         coins,
		})
		return s.outbox.Enqueue(tx, &models.OutboxEvent{
			UserID:  req.ToUserID,
			Type:    models.NotifyRecognitionReceived,
			Title:   "收到同事认可",
			Message: fmt.Sprintf("%s 给你点了「%s」，+%d 快乐币", sender.GetDisplayName(), req.Type, coins),
			Payload: string(payload),
		})
	})
	if err != nil {
		return nil, err
	}
	return recognition, nil
}

// ListReceived 收到的认可
func (s *RecognitionService) ListReceived(userID string, limit int) ([]models.Recognition, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var items []models.Recognition
	err := s.db.Where("to_user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&items).Error
	return items, err
}

// ListSent 发出的认可
func (s *RecognitionService) ListSent(userID string, limit int) ([]models.Recognition, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var items []models.Recognition
	err := s.db.Where("from_user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&items).Error
	return items, err
}

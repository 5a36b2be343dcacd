package services

import (
	"WellnessGo/models"
	"WellnessGo/utils"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// JournalService 员工日记
// 创建后24小时内可编辑，删除是软删除；冗余计数挂在聚合上
type JournalService struct {
	db    *gorm.DB
	clock Clock
	agg   *AggregateService
}

func NewJournalService(db *gorm.DB, clock Clock, agg *AggregateService) *JournalService {
	return &JournalService{db: db, clock: clock, agg: agg}
}

// Create 写日记，同事务更新聚合上的日记计数
func (s *JournalService) Create(userID string, req *models.JournalCreateRequest) (*models.JournalEntry, error) {
	now := s.clock.Now()
	entry := &models.JournalEntry{
		ID:           utils.GenerateID(),
		UserID:       userID,
		Title:        req.Title,
		Content:      req.Content,
		Mood:         req.Mood,
		Category:     req.Category,
		Tags:         strings.Join(req.Tags, ","),
		Privacy:      req.Privacy,
		WordCount:    len(strings.Fields(req.Content)),
		CreatedAt:    now,
		LastModified: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		day := DayBucket(now)
		_, err := s.agg.UpdateAtomically(tx, userID, func(u *models.User) error {
			u.JournalEntries++
			u.LastJournalDay = &day
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Update 编辑日记，仅限创建后24小时内
func (s *JournalService) Update(userID, entryID string, req *models.JournalUpdateRequest) (*models.JournalEntry, error) {
	entry, err := s.get(userID, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Editable(s.clock.Now()) {
		return nil, models.NewValidationError("日记创建超过24小时，不允许编辑")
	}

	updates := map[string]interface{}{"last_modified": s.clock.Now()}
	if req.Title != nil {
		updates["title"] = *req.Title
		entry.Title = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
		updates["word_count"] = len(strings.Fields(*req.Content))
		entry.Content = *req.Content
		entry.WordCount = len(strings.Fields(*req.Content))
	}
	if req.Mood != nil {
		if *req.Mood < 1 || *req.Mood > 5 {
			return nil, models.NewValidationError("心情分值必须在1到5之间")
		}
		updates["mood"] = *req.Mood
		entry.Mood = *req.Mood
	}
	if req.Tags != nil {
		updates["tags"] = strings.Join(req.Tags, ",")
		entry.Tags = strings.Join(req.Tags, ",")
	}

	if err := s.db.Model(&models.JournalEntry{}).Where("id = ?", entry.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete 软删除
func (s *JournalService) Delete(userID, entryID string) error {
	entry, err := s.get(userID, entryID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	return s.db.Model(&models.JournalEntry{}).Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"deleted":      true,
			"deleted_time": now,
		}).Error
}

// List 日记列表，已删除的不返回
func (s *JournalService) List(userID string, page, limit int) ([]models.JournalEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.JournalEntry{}).
		Where("user_id = ? AND deleted = ?", userID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.JournalEntry
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

func (s *JournalService) get(userID, entryID string) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := s.db.Where("id = ? AND user_id = ? AND deleted = ?", entryID, userID, false).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("日记不存在")
		}
		return nil, err
	}
	return &entry, nil
}

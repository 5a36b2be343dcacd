package services

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"fmt"

	"gorm.io/gorm"
)

// casMaxRetries CAS失败后的最大重试次数
const casMaxRetries = 5

// AggregateService 用户wellness聚合的唯一写入口
// 采用乐观并发：users表带version字段，更新时 WHERE id=? AND version=?，
// 失败则重读重算，最多重试 casMaxRetries 次。跨进程安全由
// checkins(user_id, day_bucket) 唯一索引兜底。
type AggregateService struct {
	db    *gorm.DB
	clock Clock
}

func NewAggregateService(db *gorm.DB, clock Clock) *AggregateService {
	return &AggregateService{db: db, clock: clock}
}

// Read 读取聚合当前值
func (s *AggregateService) Read(tx *gorm.DB, userID string) (*models.User, error) {
	if tx == nil {
		tx = s.db
	}
	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateAtomically 在乐观锁保护下应用变更函数f
// 所有触碰wellness字段的写路径必须经过这里，不变量校验也只在这里做：
// f 返回错误则放弃本次更新；f 产出的新状态违反不变量则返回 InvariantViolation。
func (s *AggregateService) UpdateAtomically(tx *gorm.DB, userID string, f func(u *models.User) error) (*models.User, error) {
	if tx == nil {
		tx = s.db
	}

	for attempt := 0; attempt < casMaxRetries; attempt++ {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, models.NewNotFoundError("用户不存在")
			}
			return nil, err
		}

		before := user
		if err := f(&user); err != nil {
			return nil, err
		}

		if err := validateAggregate(&before, &user, s.clock); err != nil {
			config.Logger.Errorw("聚合不变量被破坏",
				"userID", userID,
				"error", err,
			)
			return nil, err
		}

		user.Version = before.Version + 1
		result := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", userID, before.Version).
			Updates(map[string]interface{}{
				"happy_coins":       user.HappyCoins,
				"current_streak":    user.CurrentStreak,
				"longest_streak":    user.LongestStreak,
				"last_check_in_day": user.LastCheckInDay,
				"average_mood":      user.AverageMood,
				"risk_level":        user.RiskLevel,
				"journal_entries":   user.JournalEntries,
				"last_journal_day":  user.LastJournalDay,
				"version":           user.Version,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			return &user, nil
		}

		// 版本冲突，重读后重试
		config.Logger.Debugw("聚合CAS冲突，重试", "userID", userID, "attempt", attempt+1)
	}

	return nil, models.NewConflictError("聚合更新冲突，请稍后重试")
}

// RecordCoinTransaction 写入快乐币流水，必须与对应的聚合变更同事务
func (s *AggregateService) RecordCoinTransaction(tx *gorm.DB, userID string, amount, balanceAfter int, source, referenceID, remark string) error {
	if tx == nil {
		tx = s.db
	}
	return tx.Create(&models.CoinTransaction{
		UserID:       userID,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Source:       source,
		ReferenceID:  referenceID,
		Remark:       remark,
		CreatedAt:    s.clock.Now(),
	}).Error
}

// ReplayCoinBalance 从流水重放余额，审计用（P5校验）
func (s *AggregateService) ReplayCoinBalance(userID string) (int, error) {
	var total int64
	err := s.db.Model(&models.CoinTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return int(total), err
}

// validateAggregate 校验变更后的聚合满足全部不变量
func validateAggregate(before, after *models.User, clock Clock) error {
	if after.HappyCoins < 0 {
		return models.NewInvariantError(
			fmt.Sprintf("快乐币余额不允许为负: %d", after.HappyCoins))
	}
	if after.CurrentStreak < 0 {
		return models.NewInvariantError("连续打卡天数不允许为负")
	}
	if after.LongestStreak < after.CurrentStreak {
		return models.NewInvariantError(
			fmt.Sprintf("最长连续天数 %d 小于当前连续天数 %d", after.LongestStreak, after.CurrentStreak))
	}
	if after.AverageMood != nil && (*after.AverageMood < 1 || *after.AverageMood > 5) {
		return models.NewInvariantError(
			fmt.Sprintf("平均心情超出范围: %f", *after.AverageMood))
	}

	// 只有本次变更触碰了连续打卡字段时才校验打卡日新鲜度，
	// 历史遗留的过期streak（扫描任务尚未重置）不阻塞其他写入
	if streakTouched(before, after) && after.CurrentStreak > 0 {
		if after.LastCheckInDay == nil {
			return models.NewInvariantError("连续打卡大于0但没有最后打卡日")
		}
		today := Today(clock)
		last := DayBucket(*after.LastCheckInDay)
		if !last.Equal(today) && !last.Equal(today.AddDate(0, 0, -1)) {
			return models.NewInvariantError("连续打卡大于0但最后打卡日既不是今天也不是昨天")
		}
	}

	return nil
}

func streakTouched(before, after *models.User) bool {
	if before.CurrentStreak != after.CurrentStreak {
		return true
	}
	switch {
	case before.LastCheckInDay == nil && after.LastCheckInDay == nil:
		return false
	case before.LastCheckInDay == nil || after.LastCheckInDay == nil:
		return true
	default:
		return !before.LastCheckInDay.Equal(*after.LastCheckInDay)
	}
}

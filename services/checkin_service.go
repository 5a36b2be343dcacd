package services

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"WellnessGo/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 打卡奖励基础值
const (
	baseCheckInCoins  = 50 // 每日打卡
	feedbackBonus     = 10 // 附带文字反馈
	goodMoodBonus     = 5  // 心情4分及以上
	moodWindowDays    = 30 // 平均心情滚动窗口
	trendCacheExpiry  = 10 * time.Minute
	riskClassifyLimit = 10 * time.Second
)

// CheckInService 每日打卡账本
// 打卡写入与聚合更新在同一事务内完成，checkins(user_id, day_bucket)
// 唯一索引是并发提交的串行化点：同一天只有一个赢家，其余返回Conflict。
type CheckInService struct {
	db     *gorm.DB
	redis  *redis.Client
	clock  Clock
	agg    *AggregateService
	outbox *OutboxService
	risk   RiskClassifier

	wg sync.WaitGroup // 打卡后的风险分析后台任务
}

func NewCheckInService(db *gorm.DB, redisClient *redis.Client, clock Clock, agg *AggregateService, outbox *OutboxService, risk RiskClassifier) *CheckInService {
	return &CheckInService{
		db:     db,
		redis:  redisClient,
		clock:  clock,
		agg:    agg,
		outbox: outbox,
		risk:   risk,
	}
}

// Wait 等待后台风险分析任务完成，优雅关闭用
func (s *CheckInService) Wait() {
	s.wg.Wait()
}

// SubmitCheckIn 提交今日打卡
// 冲突时返回Conflict错误，result中带已存在的打卡记录，聚合不做任何修改
func (s *CheckInService) SubmitCheckIn(userID string, req *models.CheckInRequest) (*models.CheckInResult, error) {
	today := Today(s.clock)

	var result *models.CheckInResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		checkin := &models.CheckIn{
			ID:        utils.GenerateID(),
			UserID:    userID,
			DayBucket: today,
			Mood:      req.Mood,
			Feedback:  req.Feedback,
			Source:    req.Source,
			CreatedAt: s.clock.Now(),
		}

		// 账本先行，唯一索引拦截当日重复提交
		if err := tx.Create(checkin).Error; err != nil {
			if models.IsDuplicateKeyError(err) {
				return models.NewConflictError("今天已经打过卡了")
			}
			return err
		}

		var newStreak, streakBonus, totalCoins int
		user, err := s.agg.UpdateAtomically(tx, userID, func(u *models.User) error {
			ns, nl, bonus := AdvanceStreak(u.LastCheckInDay, u.CurrentStreak, u.LongestStreak, today)

			coins := baseCheckInCoins
			if req.Feedback != "" {
				coins += feedbackBonus
			}
			if req.Mood >= 4 {
				coins += goodMoodBonus
			}
			coins += bonus

			avg, err := s.windowAverageMood(tx, userID, today)
			if err != nil {
				return err
			}

			u.HappyCoins += coins
			u.CurrentStreak = ns
			u.LongestStreak = nl
			day := today
			u.LastCheckInDay = &day
			u.AverageMood = &avg

			newStreak, streakBonus, totalCoins = ns, bonus, coins
			return nil
		})
		if err != nil {
			return err
		}

		// 回填账本行的冻结字段
		checkin.HappyCoinsEarned = totalCoins
		checkin.StreakAtCheckIn = newStreak
		if err := tx.Model(&models.CheckIn{}).Where("id = ?", checkin.ID).
			Updates(map[string]interface{}{
				"happy_coins_earned": totalCoins,
				"streak_at_check_in": newStreak,
			}).Error; err != nil {
			return err
		}

		// 快乐币流水
		base := totalCoins - streakBonus
		if err := s.agg.RecordCoinTransaction(tx, userID, base, user.HappyCoins-streakBonus,
			models.CoinSourceCheckIn, checkin.ID, "每日打卡奖励"); err != nil {
			return err
		}
		if streakBonus > 0 {
			if err := s.agg.RecordCoinTransaction(tx, userID, streakBonus, user.HappyCoins,
				models.CoinSourceStreakBonus, checkin.ID,
				fmt.Sprintf("连续打卡%d天奖励", newStreak)); err != nil {
				return err
			}
		}

		// 发件箱事件，与上面的变更同生共死
		payload, _ := json.Marshal(map[string]interface{}{
			"checkInId": checkin.ID,
			"mood":      req.Mood,
			"coins":     totalCoins,
			"streak":    newStreak,
		})
		if err := s.outbox.Enqueue(tx, &models.OutboxEvent{
			UserID:  userID,
			Type:    models.NotifyCheckInCompleted,
			Title:   "打卡成功",
			Message: fmt.Sprintf("今日打卡完成，获得 %d 快乐币", totalCoins),
			Payload: string(payload),
		}); err != nil {
			return err
		}
		if err := s.outbox.Enqueue(tx, &models.OutboxEvent{
			UserID:  userID,
			Type:    models.NotifyHappyCoinsEarned,
			Title:   "快乐币到账",
			Message: fmt.Sprintf("+%d 快乐币", totalCoins),
			Payload: string(payload),
		}); err != nil {
			return err
		}
		if streakBonus > 0 {
			if err := s.outbox.Enqueue(tx, &models.OutboxEvent{
				UserID:   userID,
				Type:     models.NotifyStreakMilestone,
				Title:    fmt.Sprintf("连续打卡 %d 天！", newStreak),
				Message:  fmt.Sprintf("达成 %d 天连续打卡里程碑，奖励 %d 快乐币", newStreak, streakBonus),
				Payload:  string(payload),
				Priority: models.PriorityHigh,
			}); err != nil {
				return err
			}
		}

		result = &models.CheckInResult{
			CheckIn:   checkin,
			Wellness:  user.WellnessSnapshot(),
			CoinsEarn: totalCoins,
		}
		return nil
	})

	if err != nil {
		if models.KindOf(err) == models.KindConflict {
			// 带上已存在的记录返回，方便前端展示
			existing, findErr := s.FindToday(userID)
			if findErr == nil && existing != nil {
				return &models.CheckInResult{CheckIn: existing}, err
			}
		}
		return nil, err
	}

	// 提交之后再做风险分析，外部依赖失败不回滚打卡
	s.classifyRiskAsync(userID)

	return result, nil
}

// windowAverageMood 最近30天（含今天）打卡心情均值，保留一位小数
// 调用时本次打卡已插入，直接统计窗口即可
func (s *CheckInService) windowAverageMood(tx *gorm.DB, userID string, today time.Time) (float64, error) {
	since := today.AddDate(0, 0, -(moodWindowDays - 1))
	var moods []int
	if err := tx.Model(&models.CheckIn{}).
		Where("user_id = ? AND day_bucket >= ?", userID, since).
		Order("day_bucket ASC").
		Pluck("mood", &moods).Error; err != nil {
		return 0, err
	}
	if len(moods) == 0 {
		return 0, fmt.Errorf("窗口内没有打卡记录")
	}
	sum := 0
	for _, m := range moods {
		sum += m
	}
	avg := float64(sum) / float64(len(moods))
	return math.Round(avg*10) / 10, nil
}

// FindToday 今日打卡记录，没有则返回 (nil, nil)
func (s *CheckInService) FindToday(userID string) (*models.CheckIn, error) {
	today := Today(s.clock)
	var checkin models.CheckIn
	err := s.db.Where("user_id = ? AND day_bucket = ?", userID, today).First(&checkin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkin, nil
}

// List 打卡历史，支持日期区间和分页，附带区间心情统计
func (s *CheckInService) List(userID string, startDate, endDate *time.Time, page, limit int) (*models.CheckInListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.CheckIn{}).Where("user_id = ?", userID)
	if startDate != nil {
		query = query.Where("day_bucket >= ?", DayBucket(*startDate))
	}
	if endDate != nil {
		query = query.Where("day_bucket <= ?", DayBucket(*endDate))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.CheckIn
	if err := query.Order("day_bucket DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}

	// 心情统计按整个筛选区间计算，不受分页影响
	stats := models.MoodStats{Counts: map[int]int{}}
	var moods []int
	if err := query.Pluck("mood", &moods).Error; err != nil {
		return nil, err
	}
	if len(moods) > 0 {
		sum := 0
		for _, m := range moods {
			sum += m
			stats.Counts[m]++
		}
		stats.Average = math.Round(float64(sum)/float64(len(moods))*10) / 10
	}

	return &models.CheckInListResult{
		Items:     items,
		Total:     total,
		Page:      page,
		Limit:     limit,
		MoodStats: stats,
	}, nil
}

// MoodTrend 最近N天逐日心情与走向
// 走向判定：近半段均值与前半段均值差超过±0.3判升/降，否则平稳
func (s *CheckInService) MoodTrend(userID string, days int) (*models.MoodTrendResult, error) {
	if days < 2 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	today := Today(s.clock)

	// 趋势查询走redis缓存
	cacheKey := fmt.Sprintf("mood:trend:%s:%d:%s", userID, days, today.Format("2006-01-02"))
	if s.redis != nil {
		if cached, err := s.redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var result models.MoodTrendResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	since := today.AddDate(0, 0, -(days - 1))
	var checkins []models.CheckIn
	if err := s.db.Where("user_id = ? AND day_bucket >= ?", userID, since).
		Order("day_bucket ASC").
		Find(&checkins).Error; err != nil {
		return nil, err
	}

	points := make([]models.MoodTrendPoint, 0, len(checkins))
	for _, c := range checkins {
		points = append(points, models.MoodTrendPoint{
			Day:     c.DayBucket,
			Average: float64(c.Mood),
			Count:   1,
		})
	}

	result := &models.MoodTrendResult{
		Days:      days,
		Points:    points,
		Direction: trendDirection(points),
	}

	if s.redis != nil {
		if data, err := json.Marshal(result); err == nil {
			s.redis.Set(context.Background(), cacheKey, data, trendCacheExpiry)
		}
	}

	return result, nil
}

// trendDirection 近期均值与早期均值对比，阈值±0.3
func trendDirection(points []models.MoodTrendPoint) string {
	if len(points) < 2 {
		return models.TrendStable
	}
	half := len(points) / 2
	older, recent := points[:half], points[half:]

	mean := func(ps []models.MoodTrendPoint) float64 {
		sum := 0.0
		for _, p := range ps {
			sum += p.Average
		}
		return sum / float64(len(ps))
	}

	diff := mean(recent) - mean(older)
	switch {
	case diff > 0.3:
		return models.TrendImproving
	case diff < -0.3:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// UpdateFeedback 编辑当日打卡的反馈文字，其余字段写入后冻结
func (s *CheckInService) UpdateFeedback(userID, checkinID, feedback string) (*models.CheckIn, error) {
	var checkin models.CheckIn
	if err := s.db.Where("id = ? AND user_id = ?", checkinID, userID).First(&checkin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("打卡记录不存在")
		}
		return nil, err
	}

	if !DayBucket(checkin.DayBucket).Equal(Today(s.clock)) {
		return nil, models.NewValidationError("只能编辑当天的打卡反馈")
	}

	if err := s.db.Model(&models.CheckIn{}).Where("id = ?", checkin.ID).
		Update("feedback", feedback).Error; err != nil {
		return nil, err
	}
	checkin.Feedback = feedback
	return &checkin, nil
}

// classifyRiskAsync 打卡提交后异步刷新风险等级
// 分类器失败保留旧等级，绝不影响打卡结果
func (s *CheckInService) classifyRiskAsync(userID string) {
	if s.risk == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), riskClassifyLimit)
		defer cancel()

		history, err := s.recentHistory(userID)
		if err != nil {
			config.Logger.Warnw("读取打卡历史失败，跳过风险分析", "userID", userID, "error", err)
			return
		}

		level, score, err := s.risk.Classify(ctx, history)
		if err != nil {
			config.Logger.Warnw("风险分类失败，保留原等级", "userID", userID, "error", err)
			return
		}

		var becameHigh bool
		_, err = s.agg.UpdateAtomically(nil, userID, func(u *models.User) error {
			becameHigh = level == models.RiskLevelHigh && u.RiskLevel != models.RiskLevelHigh
			u.RiskLevel = level
			return nil
		})
		if err != nil {
			config.Logger.Warnw("写入风险等级失败", "userID", userID, "error", err)
			return
		}

		config.Logger.Infow("风险等级已更新", "userID", userID, "level", level, "score", score)

		if becameHigh {
			if err := s.outbox.Enqueue(nil, &models.OutboxEvent{
				UserID:   userID,
				Type:     models.NotifyRiskAlert,
				Title:    "请关注你的状态",
				Message:  "最近的心情记录显示压力偏高，建议联系员工关怀渠道",
				Priority: models.PriorityHigh,
			}); err != nil {
				config.Logger.Warnw("风险提醒入队失败", "userID", userID, "error", err)
			}
		}
	}()
}

// recentHistory 最近30天打卡历史，给风险分类器用
func (s *CheckInService) recentHistory(userID string) ([]models.CheckIn, error) {
	since := Today(s.clock).AddDate(0, 0, -(moodWindowDays - 1))
	var checkins []models.CheckIn
	err := s.db.Where("user_id = ? AND day_bucket >= ?", userID, since).
		Order("day_bucket ASC").
		Find(&checkins).Error
	return checkins, err
}

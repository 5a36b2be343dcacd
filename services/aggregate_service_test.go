package services

import (
	"WellnessGo/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 余额扣成负数必须被拒绝，聚合保持原样
func TestUpdateAtomicallyRejectsNegativeBalance(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	user := newTestUser(t, db, 100, 0, 0, nil)

	_, err := agg.UpdateAtomically(nil, user.ID, func(u *models.User) error {
		u.HappyCoins -= 200
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, models.KindInvariant, models.KindOf(err))

	var after models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&after).Error)
	assert.Equal(t, 100, after.HappyCoins)
	assert.Equal(t, user.Version, after.Version)
}

// 最长连续天数不允许小于当前连续天数
func TestUpdateAtomicallyRejectsLongestBelowCurrent(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	today := Today(clock)
	user := newTestUser(t, db, 0, 3, 5, &today)

	_, err := agg.UpdateAtomically(nil, user.ID, func(u *models.User) error {
		u.LongestStreak = 1
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, models.KindInvariant, models.KindOf(err))
}

// streak大于0时最后打卡日必须是今天或昨天
func TestUpdateAtomicallyRejectsStaleStreak(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	user := newTestUser(t, db, 0, 0, 5, nil)

	_, err := agg.UpdateAtomically(nil, user.ID, func(u *models.User) error {
		u.CurrentStreak = 3
		u.LastCheckInDay = dayPtr(2024, 3, 1) // 六天前
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, models.KindInvariant, models.KindOf(err))
}

// 不触碰streak字段的写入不受历史遗留的过期streak影响
func TestUpdateAtomicallyAllowsCoinCreditWithStaleStreak(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	// 扫描任务还没跑，库里躺着过期的streak
	user := newTestUser(t, db, 10, 4, 4, dayPtr(2024, 2, 20))

	updated, err := agg.UpdateAtomically(nil, user.ID, func(u *models.User) error {
		u.HappyCoins += 20
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.HappyCoins)
}

// 每次成功更新版本号加一
func TestUpdateAtomicallyBumpsVersion(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	user := newTestUser(t, db, 0, 0, 0, nil)

	for i := 1; i <= 3; i++ {
		updated, err := agg.UpdateAtomically(nil, user.ID, func(u *models.User) error {
			u.HappyCoins += 5
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, i, updated.Version)
	}
}

func TestUpdateAtomicallyUserNotFound(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)

	_, err := agg.UpdateAtomically(nil, "不存在的用户", func(u *models.User) error {
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

// 流水重放的余额与聚合存储值一致
func TestCoinBalanceMatchesTransactionLog(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db, agg, outbox, checkins := newTestStack(t, clock)
	rewards := NewRewardService(db, clock, agg, outbox)
	recognitions := NewRecognitionService(db, clock, agg, outbox)

	alice := newTestUser(t, db, 0, 0, 0, nil)
	bob := newTestUser(t, db, 500, 0, 0, nil)

	// 打卡、认可、兑换、取消轮番上阵
	_, err := checkins.SubmitCheckIn(alice.ID, &models.CheckInRequest{Mood: 5, Feedback: "不错", Source: models.SourceWeb})
	require.NoError(t, err)

	_, err = recognitions.Send(bob.ID, &models.RecognitionRequest{
		ToUserID: alice.ID, Type: "teamwork", Message: "多谢帮忙",
	})
	require.NoError(t, err)

	reward, err := rewards.UpsertReward("", &models.RewardUpsertRequest{
		Name: "咖啡券", Cost: 30, QuantityRemaining: 5,
	})
	require.NoError(t, err)

	redemption, err := rewards.Redeem(alice.ID, reward.ID)
	require.NoError(t, err)
	_, err = rewards.Cancel(alice.ID, redemption.ID)
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.Where("id = ?", alice.ID).First(&stored).Error)

	replayed, err := agg.ReplayCoinBalance(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.HappyCoins, replayed)
	// 50+10+5 打卡 + 20 认可，兑换与退款相抵
	assert.Equal(t, 85, stored.HappyCoins)
}

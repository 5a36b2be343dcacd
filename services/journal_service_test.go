package services

import (
	"WellnessGo/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newJournalStack(t *testing.T) (*gorm.DB, *JournalService, *fakeClock, *models.User) {
	t.Helper()
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	svc := NewJournalService(db, clock, agg)
	user := newTestUser(t, db, 0, 0, 0, nil)
	return db, svc, clock, user
}

// 创建日记：字数统计、聚合上的计数同步更新
func TestJournalCreate(t *testing.T) {
	db, svc, _, user := newJournalStack(t)

	entry, err := svc.Create(user.ID, &models.JournalCreateRequest{
		Title:   "今天的复盘",
		Content: "today was a productive day overall",
		Mood:    4,
		Tags:    []string{"工作", "复盘"},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, entry.WordCount)
	assert.Equal(t, "工作,复盘", entry.Tags)

	var u models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&u).Error)
	assert.Equal(t, 1, u.JournalEntries)
	require.NotNil(t, u.LastJournalDay)
	assert.Equal(t, "2024-03-07", u.LastJournalDay.Format("2006-01-02"))
}

// 24小时内可编辑，超时拒绝
func TestJournalEditWindow(t *testing.T) {
	_, svc, clock, user := newJournalStack(t)

	entry, err := svc.Create(user.ID, &models.JournalCreateRequest{
		Title: "草稿", Content: "first draft",
	})
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	newContent := "first draft revised with more words"
	updated, err := svc.Update(user.ID, entry.ID, &models.JournalUpdateRequest{
		Content: &newContent,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.WordCount)

	clock.Advance(2 * time.Hour)
	_, err = svc.Update(user.ID, entry.ID, &models.JournalUpdateRequest{
		Content: &newContent,
	})
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}

func TestJournalUpdateBadMood(t *testing.T) {
	_, svc, _, user := newJournalStack(t)

	entry, err := svc.Create(user.ID, &models.JournalCreateRequest{
		Title: "记录", Content: "ok",
	})
	require.NoError(t, err)

	bad := 6
	_, err = svc.Update(user.ID, entry.ID, &models.JournalUpdateRequest{Mood: &bad})
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}

// 软删除后列表和查询都不可见
func TestJournalDelete(t *testing.T) {
	_, svc, _, user := newJournalStack(t)

	entry, err := svc.Create(user.ID, &models.JournalCreateRequest{
		Title: "要删的", Content: "bye",
	})
	require.NoError(t, err)
	keep, err := svc.Create(user.ID, &models.JournalCreateRequest{
		Title: "留着的", Content: "stay",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID, entry.ID))

	entries, total, err := svc.List(user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, keep.ID, entries[0].ID)

	// 已删除的再编辑报不存在
	title := "改标题"
	_, err = svc.Update(user.ID, entry.ID, &models.JournalUpdateRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

// 只能操作自己的日记
func TestJournalOwnership(t *testing.T) {
	db, svc, _, user := newJournalStack(t)
	other := newTestUser(t, db, 0, 0, 0, nil)

	entry, err := svc.Create(user.ID, &models.JournalCreateRequest{
		Title: "私密", Content: "secret",
	})
	require.NoError(t, err)

	err = svc.Delete(other.ID, entry.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

package services

import (
	"WellnessGo/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecognitionStack(t *testing.T) (*RecognitionService, *models.User, *models.User, func(string) *models.User) {
	t.Helper()
	clock := newFakeClock(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))
	db := newTestDB(t)
	agg := NewAggregateService(db, clock)
	outbox := NewOutboxService(db, clock, nil, nil, false)
	svc := NewRecognitionService(db, clock, agg, outbox)
	sender := newTestUser(t, db, 100, 0, 0, nil)
	recipient := newTestUser(t, db, 100, 0, 0, nil)
	reload := func(id string) *models.User {
		var u models.User
		require.NoError(t, db.Where("id = ?", id).First(&u).Error)
		return &u
	}
	return svc, sender, recipient, reload
}

// 每种认可类型按表加币，发送方余额不变
func TestSendRecognitionCreditsByType(t *testing.T) {
	svc, sender, recipient, reload := newRecognitionStack(t)

	expected := 100
	for _, typ := range []string{"kudos", "gratitude", "teamwork", "innovation", "leadership"} {
		rec, err := svc.Send(sender.ID, &models.RecognitionRequest{
			ToUserID: recipient.ID,
			Type:     typ,
			Message:  "干得漂亮",
		})
		require.NoError(t, err, typ)
		coins := models.RecognitionCoins(typ)
		assert.Equal(t, coins, rec.HappyCoinsAwarded, typ)
		expected += coins
		assert.Equal(t, expected, reload(recipient.ID).HappyCoins, typ)
	}

	// 发送方不扣币也不加币
	assert.Equal(t, 100, reload(sender.ID).HappyCoins)
}

func TestSendRecognitionSelfRejected(t *testing.T) {
	svc, sender, _, reload := newRecognitionStack(t)

	_, err := svc.Send(sender.ID, &models.RecognitionRequest{
		ToUserID: sender.ID,
		Type:     "kudos",
	})
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
	assert.Equal(t, 100, reload(sender.ID).HappyCoins)
}

func TestSendRecognitionUnknownType(t *testing.T) {
	svc, sender, recipient, reload := newRecognitionStack(t)

	_, err := svc.Send(sender.ID, &models.RecognitionRequest{
		ToUserID: recipient.ID,
		Type:     "applause",
	})
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
	assert.Equal(t, 100, reload(recipient.ID).HappyCoins)
}

func TestSendRecognitionRecipientNotFound(t *testing.T) {
	svc, sender, _, _ := newRecognitionStack(t)

	_, err := svc.Send(sender.ID, &models.RecognitionRequest{
		ToUserID: "不存在的用户",
		Type:     "kudos",
	})
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

// 认可写入流水，接收/发送列表各自可查
func TestRecognitionLists(t *testing.T) {
	svc, sender, recipient, _ := newRecognitionStack(t)

	_, err := svc.Send(sender.ID, &models.RecognitionRequest{
		ToUserID: recipient.ID, Type: "teamwork", Message: "配合默契",
	})
	require.NoError(t, err)
	_, err = svc.Send(recipient.ID, &models.RecognitionRequest{
		ToUserID: sender.ID, Type: "kudos",
	})
	require.NoError(t, err)

	received, err := svc.ListReceived(recipient.ID, 20)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "teamwork", received[0].Type)
	assert.Equal(t, sender.ID, received[0].FromUserID)

	sent, err := svc.ListSent(recipient.ID, 20)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "kudos", sent[0].Type)
}

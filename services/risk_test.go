package services

import (
	"WellnessGo/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

func moodHistory(moods ...int) []models.CheckIn {
	history := make([]models.CheckIn, len(moods))
	for i, m := range moods {
		history[i] = models.CheckIn{Mood: m}
	}
	return history
}

func TestHeuristicClassifier(t *testing.T) {
	c := NewHeuristicClassifier()
	ctx := context.Background()

	cases := []struct {
		name  string
		moods []int
		level string
	}{
		{"无历史默认低风险", nil, models.RiskLevelLow},
		{"持续好心情", []int{4, 5, 4, 5, 4, 5, 4}, models.RiskLevelLow},
		{"均值偏低", []int{3, 3, 3, 2, 3, 3, 3, 4, 3, 3}, models.RiskLevelMedium},
		{"近期连续低分", []int{4, 4, 4, 4, 1, 1, 1, 1}, models.RiskLevelHigh},
		{"均值很低", []int{2, 2, 1, 2, 2}, models.RiskLevelHigh},
		{"早期低分近期恢复", []int{1, 1, 4, 4, 4, 5, 4, 5, 4, 5}, models.RiskLevelLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level, score, err := c.Classify(ctx, moodHistory(tc.moods...))
			require.NoError(t, err)
			assert.Equal(t, tc.level, level)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

// fakeModel 返回固定文本的LLM，记录收到的消息
type fakeModel struct {
	reply    string
	messages []llms.MessageContent
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.reply, nil
}

// LLM输出合法JSON时直接采信
func TestLLMClassifierParsesOutput(t *testing.T) {
	model := &fakeModel{reply: `{"level":"high","score":0.9}`}
	c := NewLLMClassifier(&LLMClient{Chat: model})

	level, score, err := c.Classify(context.Background(), moodHistory(1, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, models.RiskLevelHigh, level)
	assert.InDelta(t, 0.9, score, 0.001)

	// system提示 + 打卡历史两条消息
	require.Len(t, model.messages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
}

// 输出解析不了或等级非法时回退启发式
func TestLLMClassifierFallback(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"非JSON输出", "今天的心情不太好"},
		{"非法等级", `{"level":"critical","score":0.5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewLLMClassifier(&LLMClient{Chat: &fakeModel{reply: tc.reply}})

			level, _, err := c.Classify(context.Background(), moodHistory(5, 5, 5, 5, 5))
			require.NoError(t, err)
			assert.Equal(t, models.RiskLevelLow, level)
		})
	}
}

// 分数随风险单调：心情越差分数越高
func TestHeuristicScoreOrdering(t *testing.T) {
	c := NewHeuristicClassifier()
	ctx := context.Background()

	_, happy, err := c.Classify(ctx, moodHistory(5, 5, 5, 5, 5))
	require.NoError(t, err)
	_, gloomy, err := c.Classify(ctx, moodHistory(1, 1, 1, 1, 1))
	require.NoError(t, err)

	assert.Less(t, happy, gloomy)
}

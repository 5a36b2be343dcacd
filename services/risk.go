package services

import (
	"WellnessGo/models"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// RiskClassifier 风险分类协作方
// 核心只依赖这个契约，不内置具体算法；等级直接采信分类器输出
type RiskClassifier interface {
	Classify(ctx context.Context, history []models.CheckIn) (level string, score float64, err error)
}

// HeuristicClassifier 基于心情均值和低分天数的启发式分类器，默认实现
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

func (c *HeuristicClassifier) Classify(ctx context.Context, history []models.CheckIn) (string, float64, error) {
	if len(history) == 0 {
		return models.RiskLevelLow, 0, nil
	}

	sum := 0
	lowDays := 0
	for _, ci := range history {
		sum += ci.Mood
		if ci.Mood <= 2 {
			lowDays++
		}
	}
	avg := float64(sum) / float64(len(history))

	// 最近7条里的低分天数权重更高
	recentLow := 0
	tail := history
	if len(tail) > 7 {
		tail = tail[len(tail)-7:]
	}
	for _, ci := range tail {
		if ci.Mood <= 2 {
			recentLow++
		}
	}

	// 分数越高风险越大，0..1
	score := (5-avg)/4*0.6 + float64(recentLow)/7*0.4

	switch {
	case avg < 2.2 || recentLow >= 4:
		return models.RiskLevelHigh, score, nil
	case avg < 3.2 || recentLow >= 2:
		return models.RiskLevelMedium, score, nil
	default:
		return models.RiskLevelLow, score, nil
	}
}

// LLMClassifier 基于LLM的风险分类器，AI_ENRICHMENT_ENABLED时启用
// 模型输出解析失败时回退到启发式结果
type LLMClassifier struct {
	client   *LLMClient
	fallback *HeuristicClassifier
}

func NewLLMClassifier(client *LLMClient) *LLMClassifier {
	return &LLMClassifier{
		client:   client,
		fallback: NewHeuristicClassifier(),
	}
}

type llmRiskOutput struct {
	Level string  `json:"level"`
	Score float64 `json:"score"`
}

func (c *LLMClassifier) Classify(ctx context.Context, history []models.CheckIn) (string, float64, error) {
	if len(history) == 0 {
		return models.RiskLevelLow, 0, nil
	}

	var sb strings.Builder
	for _, ci := range history {
		sb.WriteString(fmt.Sprintf("%s 心情%d分", ci.DayBucket.Format("2006-01-02"), ci.Mood))
		if ci.Feedback != "" {
			sb.WriteString(" 反馈:" + ci.Feedback)
		}
		sb.WriteString("\n")
	}

	messages := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(
				`你是员工心理健康风险评估助手。根据最近的打卡记录，输出JSON：{"level":"low|medium|high","score":0到1的数值}。只输出JSON。`)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(sb.String())},
		},
	}

	resp, err := c.client.Chat.GenerateContent(ctx, messages, llms.WithTemperature(0.1))
	if err != nil {
		return "", 0, models.NewExternalError("LLM风险分类调用失败", err)
	}
	if len(resp.Choices) == 0 {
		return c.fallback.Classify(ctx, history)
	}

	var out llmRiskOutput
	if err := json.Unmarshal([]byte(resp.Choices[0].Content), &out); err != nil {
		return c.fallback.Classify(ctx, history)
	}
	switch out.Level {
	case models.RiskLevelLow, models.RiskLevelMedium, models.RiskLevelHigh:
		return out.Level, out.Score, nil
	}
	return c.fallback.Classify(ctx, history)
}

package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"soundscape-server/internal/models"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// openAIOracle классифицирует эмоции через OpenAI-совместимый chat completions API.
type openAIOracle struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

var _ EmotionOracle = (*openAIOracle)(nil)

// NewOpenAIOracle создает оракул поверх OpenAI-совместимого API.
func NewOpenAIOracle(cfg Config, logger *zap.Logger) (EmotionOracle, error) {
	if cfg.Model == "" {
		return nil, errors.New("не задана модель OpenAI (AI_MODEL)")
	}
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	log := logger.Named("OpenAIOracle")
	log.Info("OpenAI клиент создан",
		zap.String("base_url", openaiConfig.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)
	return &openAIOracle{
		client: openaigo.NewClientWithConfig(openaiConfig),
		model:  cfg.Model,
		logger: log,
	}, nil
}

func (o *openAIOracle) ClassifyEmotion(ctx context.Context, text string) ([]EmotionScore, error) {
	started := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: o.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: truncateRunes(text, maxPromptRunes)},
		},
	})
	if err != nil {
		o.logger.Warn("Ошибка от OpenAI API", zap.Duration("duration", time.Since(started)), zap.Error(err))
		observe(SourceOpenAI, o.model, "error", started)
		return nil, fmt.Errorf("%w: openai: %v", models.ErrOracleUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		observe(SourceOpenAI, o.model, "error_empty_response", started)
		return nil, fmt.Errorf("%w: openai: пустой ответ", models.ErrOracleUnavailable)
	}

	scores, err := ParseEmotionScores(resp.Choices[0].Message.Content)
	if err != nil {
		o.logger.Warn("Некорректный ответ OpenAI", zap.Error(err))
		observe(SourceOpenAI, o.model, "error_parse", started)
		return nil, err
	}

	observe(SourceOpenAI, o.model, "success", started)
	o.logger.Debug("OpenAI emotions received",
		zap.Int("labels", len(scores)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return scores, nil
}

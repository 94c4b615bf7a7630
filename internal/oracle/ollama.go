package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soundscape-server/internal/models"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// ollamaOracle классифицирует эмоции через нативный API Ollama.
type ollamaOracle struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

var _ EmotionOracle = (*ollamaOracle)(nil)

// NewOllamaOracle создает оракул поверх Ollama. BaseURL указывается без суффикса /v1.
func NewOllamaOracle(cfg Config, logger *zap.Logger) (EmotionOracle, error) {
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", baseURL, err)
	}
	if cfg.Model == "" {
		return nil, errors.New("не задана модель Ollama (AI_MODEL)")
	}

	client := api.NewClient(parsedURL, &http.Client{Timeout: cfg.Timeout})
	log := logger.Named("OllamaOracle")
	log.Info("Ollama клиент создан",
		zap.String("base_url", baseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)
	return &ollamaOracle{client: client, model: cfg.Model, timeout: cfg.Timeout, logger: log}, nil
}

func (o *ollamaOracle) ClassifyEmotion(ctx context.Context, text string) ([]EmotionScore, error) {
	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: truncateRunes(text, maxPromptRunes)},
		},
		Stream:  &stream,
		Options: map[string]interface{}{"temperature": 0},
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	started := time.Now()
	var resp api.ChatResponse
	err := o.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			o.logger.Warn("Таймаут запроса к Ollama", zap.Duration("timeout", o.timeout), zap.Error(err))
		} else {
			o.logger.Warn("Ошибка от Ollama API", zap.Error(err))
		}
		observe(SourceOllama, o.model, "error", started)
		return nil, fmt.Errorf("%w: ollama: %v", models.ErrOracleUnavailable, err)
	}

	scores, err := ParseEmotionScores(resp.Message.Content)
	if err != nil {
		o.logger.Warn("Некорректный ответ Ollama", zap.Int("content_len", len(resp.Message.Content)), zap.Error(err))
		observe(SourceOllama, o.model, "error_parse", started)
		return nil, err
	}

	observe(SourceOllama, o.model, "success", started)
	o.logger.Debug("Ollama emotions received",
		zap.Int("labels", len(scores)),
		zap.Int("prompt_tokens", resp.PromptEvalCount),
		zap.Int("completion_tokens", resp.EvalCount),
	)
	return scores, nil
}

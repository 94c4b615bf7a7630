package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soundscape-server/internal/patterns"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Источники настроения.
const (
	SourceRules  = "rules"
	SourceOllama = "ollama"
	SourceOpenAI = "openai"
)

// maxPromptRunes - сколько рун текста страницы уходит в запрос к модели.
const maxPromptRunes = 4000

const systemPrompt = `You are an emotion classifier for fiction. Read the passage and answer with JSON only:
an array of objects {"label": string, "score": number} where label is one of
fear, anger, nervousness, joy, amusement, excitement, sadness, grief, love, desire,
surprise, curiosity, relief, caring, neutral and score is in [0, 1].
Return at most five labels, strongest first. No prose, no code fences.`

var (
	oracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundscape_oracle_requests_total",
			Help: "Total number of emotion oracle requests.",
		},
		[]string{"provider", "model", "status"},
	)
	oracleRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundscape_oracle_request_duration_seconds",
			Help:    "Histogram of emotion oracle request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)
)

// EmotionScore - метка эмоции и ее оценка.
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EmotionOracle - внешний классификатор эмоций.
type EmotionOracle interface {
	// ClassifyEmotion возвращает оценки меток эмоций для текста.
	ClassifyEmotion(ctx context.Context, text string) ([]EmotionScore, error)
}

// Config - параметры подключения к модели.
type Config struct {
	Source  string
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// New создает оракул по конфигурации. Для источника "rules" возвращает nil без ошибки:
// настроение тогда оценивается правилами.
func New(cfg Config, logger *zap.Logger) (EmotionOracle, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", SourceRules:
		return nil, nil
	case SourceOllama:
		logger.Info("Используется оракул эмоций: Ollama")
		return NewOllamaOracle(cfg, logger)
	case SourceOpenAI:
		logger.Info("Используется оракул эмоций: OpenAI")
		return NewOpenAIOracle(cfg, logger)
	default:
		return nil, fmt.Errorf("неизвестный источник настроения: '%s'", cfg.Source)
	}
}

// MoodScores переводит оценки меток в оценки настроений через таблицу emotion_moods.
// Оценки меток, сводящихся к одному настроению, суммируются; неизвестные метки пропускаются.
func MoodScores(set *patterns.Set, scores []EmotionScore) map[string]float64 {
	moods := make(map[string]float64, len(scores))
	for _, s := range scores {
		if s.Score <= 0 {
			continue
		}
		mood, ok := set.EmotionMood(s.Label)
		if !ok {
			continue
		}
		moods[mood] += s.Score
	}
	return moods
}

func truncateRunes(text string, limit int) string {
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}

func observe(provider, model, status string, started time.Time) {
	oracleRequestsTotal.With(prometheus.Labels{"provider": provider, "model": model, "status": status}).Inc()
	if status == "success" {
		oracleRequestDuration.With(prometheus.Labels{"provider": provider, "model": model}).Observe(time.Since(started).Seconds())
	}
}

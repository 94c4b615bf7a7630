package analysis

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"soundscape-server/internal/models"
	"soundscape-server/internal/patterns"

	"go.uber.org/zap"
)

const (
	// DefaultWordsPerMinute - скорость чтения для расчета тайминга триггеров.
	DefaultWordsPerMinute = 200
	// DefaultMaxTextRunes - максимальная длина текста одного вызова.
	DefaultMaxTextRunes = 100000
)

// Engine - конвейер классификации сцены и подбора звука.
// Не имеет изменяемого состояния и безопасен для конкурентных вызовов
// (при условии, что SoundPicker тоже безопасен; все пикеры пакета безопасны).
type Engine struct {
	set            *patterns.Set
	picker         SoundPicker
	wordsPerMinute float64
	maxTextRunes   int
	logger         *zap.Logger
}

// Option настраивает Engine.
type Option func(*Engine)

// WithSoundPicker задает стратегию выбора звука из пула триггерной группы.
func WithSoundPicker(p SoundPicker) Option {
	return func(e *Engine) {
		if p != nil {
			e.picker = p
		}
	}
}

// WithReadingSpeed задает скорость чтения в словах в минуту.
func WithReadingSpeed(wordsPerMinute float64) Option {
	return func(e *Engine) {
		if wordsPerMinute > 0 {
			e.wordsPerMinute = wordsPerMinute
		}
	}
}

// WithMaxTextRunes ограничивает длину анализируемого текста. 0 снимает ограничение.
func WithMaxTextRunes(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxTextRunes = n
		}
	}
}

// WithLogger включает отладочные логи движка.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.Named("AnalysisEngine")
		}
	}
}

// NewEngine создает движок поверх скомпилированных паттернов. set не может быть nil.
func NewEngine(set *patterns.Set, opts ...Option) *Engine {
	if set == nil {
		panic("analysis: NewEngine called with nil pattern set")
	}
	e := &Engine{
		set:            set,
		picker:         NewRandomPicker(0),
		wordsPerMinute: DefaultWordsPerMinute,
		maxTextRunes:   DefaultMaxTextRunes,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Patterns возвращает конфигурацию, с которой работает движок.
func (e *Engine) Patterns() *patterns.Set {
	return e.set
}

// CheckText проверяет, что текст можно анализировать: корректный UTF-8 и длина в пределах лимита.
func (e *Engine) CheckText(text string) error {
	if !utf8.ValidString(text) {
		return models.ErrInvalidEncoding
	}
	if e.maxTextRunes > 0 {
		if n := utf8.RuneCountInString(text); n > e.maxTextRunes {
			return fmt.Errorf("%w: %d runes, limit %d", models.ErrTextTooLong, n, e.maxTextRunes)
		}
	}
	return nil
}

// IsBlank сообщает, что текст пуст или состоит из пробельных символов.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

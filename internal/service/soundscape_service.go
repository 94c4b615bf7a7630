package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/models"
	"soundscape-server/internal/oracle"
	"soundscape-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SoundscapeRequest - запрос звуковой сцены. Текст передается напрямую
// или берется из провайдера контента по адресу страницы.
type SoundscapeRequest struct {
	Text    string
	BookID  *uuid.UUID
	Chapter *int
	Page    *int
	// nil - жанр берется из книги, если задан BookID
	Genre *string
}

// SoundscapeService определяет интерфейс анализа текста.
type SoundscapeService interface {
	ClassifyScene(ctx context.Context, text, genre string) (analysis.SceneAnalysisResult, error)
	GenerateSoundscape(ctx context.Context, req SoundscapeRequest) (analysis.SoundscapeResult, error)
	FindTriggers(ctx context.Context, text string) ([]analysis.TriggerMatch, error)
}

type soundscapeServiceImpl struct {
	engine   *analysis.Engine
	content  repository.ContentProvider
	emotions oracle.EmotionOracle
	logger   *zap.Logger
}

// NewSoundscapeService создает сервис. content и emotions могут быть nil:
// без провайдера запросы по адресу страницы возвращают models.ErrContentUnavailable,
// без оракула настроение оценивается правилами.
func NewSoundscapeService(
	engine *analysis.Engine,
	content repository.ContentProvider,
	emotions oracle.EmotionOracle,
	logger *zap.Logger,
) SoundscapeService {
	return &soundscapeServiceImpl{
		engine:   engine,
		content:  content,
		emotions: emotions,
		logger:   logger.Named("SoundscapeService"),
	}
}

func (s *soundscapeServiceImpl) ClassifyScene(ctx context.Context, text, genre string) (analysis.SceneAnalysisResult, error) {
	started := time.Now()
	if err := s.engine.CheckText(text); err != nil {
		record(OperationClassify, "", StatusInvalid, started)
		return analysis.SceneAnalysisResult{}, err
	}

	result := s.engine.ClassifySceneWithMoods(text, genre, s.oracleMoods(ctx, text))
	record(OperationClassify, string(result.PrimaryScene), StatusSuccess, started)
	return result, nil
}

func (s *soundscapeServiceImpl) GenerateSoundscape(ctx context.Context, req SoundscapeRequest) (analysis.SoundscapeResult, error) {
	started := time.Now()
	logFields := requestFields(req)

	text, genre, err := s.resolveInput(ctx, req)
	if err != nil {
		status := StatusError
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			status = StatusInvalid
		case errors.Is(err, models.ErrPageNotFound), errors.Is(err, models.ErrBookNotFound):
			status = StatusNotFound
		}
		s.logger.Info("Soundscape request rejected", append(logFields, zap.String("status", status), zap.Error(err))...)
		record(OperationSoundscape, "", status, started)
		return analysis.SoundscapeResult{}, err
	}

	var moods map[string]float64
	if s.engine.CheckText(text) == nil {
		moods = s.oracleMoods(ctx, text)
	}
	result := s.engine.Compose(analysis.Input{Text: text, Genre: genre, MoodScores: moods})

	status := StatusSuccess
	if result.Err != nil {
		status = StatusInvalid
		if errors.Is(result.Err, models.ErrInternalServer) {
			status = StatusError
		}
		s.logger.Warn("Soundscape fell back to default audio", append(logFields, zap.Error(result.Err))...)
	} else {
		triggersDetected.Observe(float64(len(result.TriggeredSounds)))
	}
	record(OperationSoundscape, string(result.Scene.PrimaryScene), status, started)
	return result, nil
}

func (s *soundscapeServiceImpl) FindTriggers(ctx context.Context, text string) ([]analysis.TriggerMatch, error) {
	started := time.Now()
	if err := s.engine.CheckText(text); err != nil {
		record(OperationTriggers, "", StatusInvalid, started)
		return nil, err
	}
	triggers := s.engine.FindTriggers(text)
	triggersDetected.Observe(float64(len(triggers)))
	record(OperationTriggers, "", StatusSuccess, started)
	return triggers, nil
}

// resolveInput возвращает текст и жанр запроса, при необходимости обращаясь к провайдеру контента.
func (s *soundscapeServiceImpl) resolveInput(ctx context.Context, req SoundscapeRequest) (string, string, error) {
	hasPage := req.Chapter != nil || req.Page != nil
	fullAddress := req.BookID != nil && req.Chapter != nil && req.Page != nil
	if hasPage && !fullAddress {
		return "", "", fmt.Errorf("%w: book_id, chapter and page must be set together", models.ErrInvalidInput)
	}
	if fullAddress && (*req.Chapter < 0 || *req.Page < 0) {
		return "", "", fmt.Errorf("%w: chapter and page must not be negative", models.ErrInvalidInput)
	}
	if req.BookID != nil && !fullAddress && req.Text == "" {
		return "", "", fmt.Errorf("%w: text or a full page address is required", models.ErrInvalidInput)
	}

	needText := req.Text == "" && fullAddress
	needGenre := req.Genre == nil && req.BookID != nil
	if (needText || needGenre) && s.content == nil {
		return "", "", models.ErrContentUnavailable
	}

	text := req.Text
	if needText {
		pageText, err := s.content.GetPageText(ctx, *req.BookID, *req.Chapter, *req.Page)
		if err != nil {
			return "", "", fmt.Errorf("ошибка получения страницы: %w", err)
		}
		text = pageText
	}

	var genre string
	if req.Genre != nil {
		genre = *req.Genre
	} else if needGenre {
		bookGenre, err := s.content.GetBookGenre(ctx, *req.BookID)
		if err != nil {
			return "", "", fmt.Errorf("ошибка получения жанра книги: %w", err)
		}
		genre = bookGenre
	}
	return text, genre, nil
}

// oracleMoods возвращает оценки настроений от оракула или nil, если его нет или он не ответил.
func (s *soundscapeServiceImpl) oracleMoods(ctx context.Context, text string) map[string]float64 {
	if s.emotions == nil || analysis.IsBlank(text) {
		return nil
	}
	scores, err := s.emotions.ClassifyEmotion(ctx, text)
	if err != nil {
		moodFallbacksTotal.Inc()
		s.logger.Warn("Emotion oracle failed, using rule-based mood", zap.Error(err))
		return nil
	}
	moods := oracle.MoodScores(s.engine.Patterns(), scores)
	if len(moods) == 0 {
		s.logger.Debug("Emotion oracle returned no known labels", zap.Int("labels", len(scores)))
	}
	return moods
}

func record(operation, sceneType, status string, started time.Time) {
	analysesTotal.WithLabelValues(operation, sceneType, status).Inc()
	analysisDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func requestFields(req SoundscapeRequest) []zap.Field {
	fields := []zap.Field{zap.Int("text_bytes", len(req.Text))}
	if req.BookID != nil {
		fields = append(fields, zap.String("bookID", req.BookID.String()))
	}
	if req.Chapter != nil {
		fields = append(fields, zap.Int("chapter", *req.Chapter))
	}
	if req.Page != nil {
		fields = append(fields, zap.Int("page", *req.Page))
	}
	if req.Genre != nil {
		fields = append(fields, zap.String("genre", *req.Genre))
	}
	return fields
}

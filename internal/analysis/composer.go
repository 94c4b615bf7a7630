package analysis

import (
	"fmt"
	"math"

	"soundscape-server/internal/models"

	"go.uber.org/zap"
)

// ClassifyScene классифицирует сцену по правилам. Пустой текст дает нейтральную запись по умолчанию.
func (e *Engine) ClassifyScene(text, genre string) SceneAnalysisResult {
	return e.classify(text, e.set.ResolveGenre(genre), nil)
}

// ClassifySceneWithMoods - как ClassifyScene, но с внешними оценками настроений.
// Пустые moods означают оценку настроения правилами.
func (e *Engine) ClassifySceneWithMoods(text, genre string, moods map[string]float64) SceneAnalysisResult {
	return e.classify(text, e.set.ResolveGenre(genre), moods)
}

func (e *Engine) classify(text, genre string, externalMoods map[string]float64) SceneAnalysisResult {
	if IsBlank(text) {
		return e.defaultAnalysis(genre)
	}

	sceneScores, adjustments := e.scoreSceneTypes(text, genre)
	contextScores := e.ScoreContexts(text)

	moodScores := positiveScores(externalMoods)
	moodSource := "oracle"
	if len(moodScores) == 0 {
		moodScores = e.ScoreMoods(text)
		moodSource = "rules"
	}

	primary, top := e.PrimaryScene(sceneScores)
	audio, decision := e.resolveAudio(primary, text, genre)
	mood := e.PrimaryMood(moodScores)

	reasoning := []string{
		fmt.Sprintf("primary scene: %s (score %.2f)", primary, top),
		decision,
		fmt.Sprintf("mood: %s (%s)", mood, moodSource),
	}
	if adjustments == nil {
		adjustments = []string{}
	}

	return SceneAnalysisResult{
		PrimaryScene:     primary,
		SceneContext:     e.PrimaryContext(contextScores),
		Mood:             mood,
		Intensity:        e.EstimateIntensity(text, sceneScores, genre),
		Confidence:       e.confidence(top),
		AudioPriority:    audio,
		Genre:            genre,
		Reasoning:        reasoning,
		GenreAdjustments: adjustments,
		SceneScores:      sceneScores,
		ContextScores:    contextScores,
		MoodScores:       moodScores,
	}
}

func (e *Engine) confidence(top float64) float64 {
	if top <= 0 {
		return 0
	}
	return round2(math.Min(1, top/e.set.ConfidenceScale()))
}

func positiveScores(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

func (e *Engine) defaultAnalysis(genre string) SceneAnalysisResult {
	return SceneAnalysisResult{
		PrimaryScene:     models.SceneNeutral,
		SceneContext:     models.ContextIndoor,
		Mood:             models.MoodNeutral,
		AudioPriority:    e.set.DefaultAudio(),
		Genre:            genre,
		Reasoning:        []string{"empty text: default soundscape"},
		GenreAdjustments: []string{},
		SceneScores:      map[models.SceneType]float64{},
		ContextScores:    map[models.SceneContext]float64{},
		MoodScores:       map[string]float64{},
	}
}

// DefaultSoundscape - фиксированная запись для пустого текста.
func (e *Engine) DefaultSoundscape(genre string) SoundscapeResult {
	primary := e.set.DefaultAudio()
	secondary := e.set.FallbackSecondaryAudio()
	return SoundscapeResult{
		PrimaryAudio:    primary,
		SecondaryAudio:  secondary,
		CarpetTracks:    []string{primary, secondary},
		TriggeredSounds: []TriggerMatch{},
		Scene:           e.defaultAnalysis(e.set.ResolveGenre(genre)),
	}
}

func (e *Engine) failedSoundscape(genre string, err error) SoundscapeResult {
	result := e.DefaultSoundscape(genre)
	result.Scene.Reasoning = []string{"analysis failed: fallback soundscape"}
	result.Error = err.Error()
	result.Err = err
	return result
}

// Compose собирает звуковую сцену страницы. Никогда не паникует и не возвращает ошибку:
// некорректный текст дает запись с заполненным Error и аудио по умолчанию.
func (e *Engine) Compose(in Input) (result SoundscapeResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Паника при анализе текста", zap.Any("panic", r))
			result = e.failedSoundscape(in.Genre, fmt.Errorf("%w: analysis panic: %v", models.ErrInternalServer, r))
		}
	}()

	if IsBlank(in.Text) {
		return e.DefaultSoundscape(in.Genre)
	}
	if err := e.CheckText(in.Text); err != nil {
		e.logger.Warn("Текст отклонен", zap.Error(err))
		return e.failedSoundscape(in.Genre, err)
	}

	genre := e.set.ResolveGenre(in.Genre)
	scene := e.classify(in.Text, genre, in.MoodScores)
	primary := scene.AudioPriority
	secondary := e.secondaryAudio(scene)
	triggers := e.FindTriggers(in.Text)

	e.logger.Debug("Soundscape composed",
		zap.String("scene", string(scene.PrimaryScene)),
		zap.String("primary_audio", primary),
		zap.String("secondary_audio", secondary),
		zap.Int("triggers", len(triggers)),
	)

	return SoundscapeResult{
		PrimaryAudio:    primary,
		SecondaryAudio:  secondary,
		CarpetTracks:    []string{primary, secondary},
		TriggeredSounds: triggers,
		Scene:           scene,
	}
}

// secondaryAudio - первая альтернатива типа сцены, отличная от основного аудио,
// затем аудио настроения, затем фиксированное значение.
func (e *Engine) secondaryAudio(scene SceneAnalysisResult) string {
	if a, ok := e.set.SceneAudio(scene.PrimaryScene); ok {
		for _, alt := range a.Alternatives {
			if alt != scene.AudioPriority {
				return alt
			}
		}
	}
	if a, ok := e.set.MoodAudio(scene.Mood); ok && a != scene.AudioPriority {
		return a
	}
	return e.set.FallbackSecondaryAudio()
}

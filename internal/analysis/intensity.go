package analysis

import (
	"unicode/utf8"

	"soundscape-server/internal/models"
)

// EstimateIntensity - эвристическая интенсивность сцены в диапазоне [0, 1].
// База плюс надбавки за присутствующие типы сцен, за жанр и за длину текста.
func (e *Engine) EstimateIntensity(text string, sceneScores map[models.SceneType]float64, genre string) float64 {
	params := e.set.Intensity()
	v := params.Base

	// Порядок сложения фиксирован, чтобы результат не зависел от обхода map
	for _, scene := range models.ScoredSceneTypes {
		if bump, ok := params.SceneBumps[scene]; ok && sceneScores[scene] > 0 {
			v += bump
		}
	}
	if bump, ok := params.GenreBumps[e.set.ResolveGenre(genre)]; ok {
		v += bump
	}
	if utf8.RuneCountInString(text) > params.LengthThreshold {
		v += params.LengthBump
	}
	return clamp01(round2(v))
}

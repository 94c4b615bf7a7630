package analysis

import (
	"fmt"
	"sort"

	"soundscape-server/internal/models"
	"soundscape-server/internal/patterns"
)

// scoreRules считает для каждого правила sum(count(pattern) * weight).
// Возвращает очки в порядке объявления правил, включая нулевые.
func scoreRules(rules []patterns.Rule, text string) []float64 {
	scores := make([]float64, len(rules))
	for i, r := range rules {
		matches := 0
		for _, re := range r.Patterns {
			matches += len(re.FindAllStringIndex(text, -1))
		}
		scores[i] = float64(matches) * r.Weight
	}
	return scores
}

// ScoreSceneTypes оценивает типы сцен с учетом жанровых множителей.
// В результат попадают только строго положительные оценки.
func (e *Engine) ScoreSceneTypes(text, genre string) map[models.SceneType]float64 {
	scores, _ := e.scoreSceneTypes(text, e.set.ResolveGenre(genre))
	return scores
}

func (e *Engine) scoreSceneTypes(text, genre string) (map[models.SceneType]float64, []string) {
	rules := e.set.Scenes()
	raw := scoreRules(rules, text)
	scores := make(map[models.SceneType]float64, len(rules))
	var adjustments []string
	for i, r := range rules {
		score := raw[i]
		if score <= 0 {
			continue
		}
		scene := models.SceneType(r.Name)
		if m, ok := e.set.Multiplier(genre, scene); ok {
			adjusted := score * m
			adjustments = append(adjustments,
				fmt.Sprintf("%s: %s x%.2f (%.2f -> %.2f)", genre, scene, m, score, adjusted))
			score = adjusted
		}
		if score > 0 {
			scores[scene] = score
		}
	}
	return scores, adjustments
}

// PrimaryScene выбирает тип сцены с максимальной оценкой.
// При равенстве выигрывает тип, объявленный раньше. Пустая карта дает neutral.
func (e *Engine) PrimaryScene(scores map[models.SceneType]float64) (models.SceneType, float64) {
	best, bestScore := models.SceneNeutral, 0.0
	for _, r := range e.set.Scenes() {
		scene := models.SceneType(r.Name)
		if s, ok := scores[scene]; ok && s > bestScore {
			best, bestScore = scene, s
		}
	}
	return best, bestScore
}

// ScoreContexts оценивает физический контекст. Жанр на контекст не влияет.
func (e *Engine) ScoreContexts(text string) map[models.SceneContext]float64 {
	rules := e.set.Contexts()
	raw := scoreRules(rules, text)
	scores := make(map[models.SceneContext]float64, len(rules))
	for i, r := range rules {
		if raw[i] > 0 {
			scores[models.SceneContext(r.Name)] = raw[i]
		}
	}
	return scores
}

// PrimaryContext - контекст с максимальной оценкой, по умолчанию indoor.
func (e *Engine) PrimaryContext(scores map[models.SceneContext]float64) models.SceneContext {
	best, bestScore := models.ContextIndoor, 0.0
	for _, r := range e.set.Contexts() {
		ctx := models.SceneContext(r.Name)
		if s, ok := scores[ctx]; ok && s > bestScore {
			best, bestScore = ctx, s
		}
	}
	return best
}

// ScoreMoods оценивает настроение по правилам.
func (e *Engine) ScoreMoods(text string) map[string]float64 {
	rules := e.set.Moods()
	raw := scoreRules(rules, text)
	scores := make(map[string]float64, len(rules))
	for i, r := range rules {
		if raw[i] > 0 {
			scores[r.Name] = raw[i]
		}
	}
	return scores
}

// PrimaryMood - настроение с максимальной оценкой, по умолчанию "neutral".
// Объявленные настроения проверяются в порядке объявления, остальные ключи (от оракула) - по алфавиту.
func (e *Engine) PrimaryMood(scores map[string]float64) string {
	best, bestScore := models.MoodNeutral, 0.0
	consider := func(mood string) {
		if s, ok := scores[mood]; ok && s > bestScore {
			best, bestScore = mood, s
		}
	}

	declared := make(map[string]bool, len(e.set.Moods()))
	for _, r := range e.set.Moods() {
		declared[r.Name] = true
		consider(r.Name)
	}
	rest := make([]string, 0, len(scores))
	for mood := range scores {
		if !declared[mood] {
			rest = append(rest, mood)
		}
	}
	sort.Strings(rest)
	for _, mood := range rest {
		consider(mood)
	}
	return best
}

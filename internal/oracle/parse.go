package oracle

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"soundscape-server/internal/models"
)

// ParseEmotionScores разбирает ответ модели. Допускаются массив {label, score},
// объект {"emotions": [...]} и объект вида {"fear": 0.8}. Обертка ```json снимается.
func ParseEmotionScores(content string) ([]EmotionScore, error) {
	body := stripCodeFence(strings.TrimSpace(content))
	if body == "" {
		return nil, fmt.Errorf("%w: пустой ответ модели", models.ErrOracleUnavailable)
	}

	var list []EmotionScore
	if start, end := strings.Index(body, "["), strings.LastIndex(body, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(body[start:end+1]), &list); err == nil {
			return cleanScores(list), nil
		}
	}

	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: ответ модели не содержит JSON", models.ErrOracleUnavailable)
	}
	obj := body[start : end+1]

	var wrapped struct {
		Emotions []EmotionScore `json:"emotions"`
	}
	if err := json.Unmarshal([]byte(obj), &wrapped); err == nil && len(wrapped.Emotions) > 0 {
		return cleanScores(wrapped.Emotions), nil
	}

	var byLabel map[string]float64
	if err := json.Unmarshal([]byte(obj), &byLabel); err != nil {
		return nil, fmt.Errorf("%w: не удалось разобрать ответ модели: %v", models.ErrOracleUnavailable, err)
	}
	for label, score := range byLabel {
		list = append(list, EmotionScore{Label: label, Score: score})
	}
	return cleanScores(list), nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// cleanScores отбрасывает пустые метки и неположительные оценки, ограничивает оценку единицей
// и сортирует по убыванию.
func cleanScores(in []EmotionScore) []EmotionScore {
	out := make([]EmotionScore, 0, len(in))
	for _, s := range in {
		label := strings.TrimSpace(s.Label)
		if label == "" || s.Score <= 0 {
			continue
		}
		if s.Score > 1 {
			s.Score = 1
		}
		out = append(out, EmotionScore{Label: label, Score: s.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	return out
}

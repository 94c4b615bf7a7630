package analysis

import (
	"fmt"

	"soundscape-server/internal/models"
)

// ResolveAudioPriority выбирает ключ аудио для страницы.
//
// Для dialogue, action, emotional и transition аудио типа сцены выбирается безусловно,
// текст на упоминания локаций не просматривается. Только описательная сцена
// сканирует текст по группам локаций в порядке приоритета жанра; первая совпавшая
// группа выигрывает независимо от числа и позиции совпадений.
func (e *Engine) ResolveAudioPriority(primary models.SceneType, text, genre string) string {
	audio, _ := e.resolveAudio(primary, text, e.set.ResolveGenre(genre))
	return audio
}

func (e *Engine) resolveAudio(primary models.SceneType, text, genre string) (string, string) {
	switch primary {
	case models.SceneDialogue, models.SceneAction, models.SceneEmotional, models.SceneTransition:
		return e.baseAudio(primary), fmt.Sprintf("%s scene: scene audio overrides location mentions", primary)

	case models.SceneDescriptive:
		for _, group := range e.set.LocationPriority(genre) {
			if m := group.Matcher.FindString(text); m != "" {
				return group.Audio, fmt.Sprintf("descriptive scene: location group %q matched %q", group.Name, m)
			}
		}
		return e.baseAudio(primary), "descriptive scene: no location matched, using scene audio"

	default:
		return e.baseAudio(primary), fmt.Sprintf("%s scene: using base audio", primary)
	}
}

func (e *Engine) baseAudio(scene models.SceneType) string {
	if a, ok := e.set.SceneAudio(scene); ok && a.Base != "" {
		return a.Base
	}
	return e.set.DefaultAudio()
}

package patterns

import (
	"errors"
	"fmt"

	"soundscape-server/internal/models"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig - ошибка конфигурации паттернов. Фатальна при старте, во время анализа не возникает.
var ErrInvalidConfig = errors.New("invalid pattern configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет структуру (теги validator) и смысловые ограничения таблиц.
func (r *Raw) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: конфигурация пуста", ErrInvalidConfig)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	checks := []func() error{
		r.validateScenes,
		r.validateContexts,
		r.validateMoods,
		r.validateGenres,
		r.validateSceneAudio,
		r.validateLocations,
		r.validateTriggers,
		r.validateIntensity,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (r *Raw) validateScenes() error {
	seen := make(map[models.SceneType]bool, len(r.Scenes))
	for i, s := range r.Scenes {
		st := models.SceneType(s.Name)
		if st == models.SceneNeutral || !st.IsValid() {
			return invalid("scenes[%d]: неизвестный тип сцены %q", i, s.Name)
		}
		if seen[st] {
			return invalid("scenes[%d]: тип сцены %q объявлен повторно", i, s.Name)
		}
		seen[st] = true
	}
	for _, st := range models.ScoredSceneTypes {
		if !seen[st] {
			return invalid("scenes: не объявлены паттерны для типа сцены %q", st)
		}
	}
	return nil
}

func (r *Raw) validateContexts() error {
	seen := make(map[string]bool, len(r.Contexts))
	for i, c := range r.Contexts {
		if !models.SceneContext(c.Name).IsValid() {
			return invalid("contexts[%d]: неизвестный контекст %q", i, c.Name)
		}
		if seen[c.Name] {
			return invalid("contexts[%d]: контекст %q объявлен повторно", i, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func (r *Raw) moodDeclared(name string) bool {
	if name == models.MoodNeutral {
		return true
	}
	for _, m := range r.Moods {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (r *Raw) validateMoods() error {
	seen := make(map[string]bool, len(r.Moods))
	for i, m := range r.Moods {
		if seen[m.Name] {
			return invalid("moods[%d]: настроение %q объявлено повторно", i, m.Name)
		}
		seen[m.Name] = true
	}
	if _, ok := r.MoodAudio[models.MoodNeutral]; !ok {
		return invalid("mood_audio: отсутствует обязательный ключ %q", models.MoodNeutral)
	}
	for mood := range r.MoodAudio {
		if !r.moodDeclared(mood) {
			return invalid("mood_audio: настроение %q не объявлено в moods", mood)
		}
	}
	for label, mood := range r.EmotionMoods {
		if !r.moodDeclared(mood) {
			return invalid("emotion_moods[%s]: настроение %q не объявлено в moods", label, mood)
		}
	}
	return nil
}

func (r *Raw) validateGenres() error {
	names := make(map[string]bool, len(r.Genres))
	for i, g := range r.Genres {
		name := NormalizeGenre(g.Name)
		if name == "" {
			return invalid("genres[%d]: пустое имя жанра", i)
		}
		if names[name] {
			return invalid("genres[%d]: жанр %q объявлен повторно", i, g.Name)
		}
		names[name] = true
		for scene := range g.Multipliers {
			st := models.SceneType(scene)
			if st == models.SceneNeutral || !st.IsValid() {
				return invalid("genres[%d].multipliers: неизвестный тип сцены %q", i, scene)
			}
		}
	}
	aliases := make(map[string]bool)
	for i, g := range r.Genres {
		for _, a := range g.Aliases {
			alias := NormalizeGenre(a)
			if names[alias] || aliases[alias] {
				return invalid("genres[%d].aliases: алиас %q конфликтует с другим жанром", i, a)
			}
			aliases[alias] = true
		}
	}
	return nil
}

func (r *Raw) validateSceneAudio() error {
	for scene := range r.SceneAudio {
		if !models.SceneType(scene).IsValid() {
			return invalid("scene_audio: неизвестный тип сцены %q", scene)
		}
	}
	for _, st := range models.AllSceneTypes {
		if _, ok := r.SceneAudio[string(st)]; !ok {
			return invalid("scene_audio: отсутствует аудио для типа сцены %q", st)
		}
	}
	return nil
}

func (r *Raw) validateLocations() error {
	if err := uniqueLocationNames("locations", r.Locations); err != nil {
		return err
	}
	for i, o := range r.LocationOverrides {
		if NormalizeGenre(o.Genre) == "" {
			return invalid("location_overrides[%d]: пустой жанр", i)
		}
		if err := uniqueLocationNames(fmt.Sprintf("location_overrides[%d].groups", i), o.Groups); err != nil {
			return err
		}
	}
	return nil
}

func uniqueLocationNames(path string, groups []LocationTable) error {
	seen := make(map[string]bool, len(groups))
	for i, g := range groups {
		if seen[g.Name] {
			return invalid("%s[%d]: группа %q объявлена повторно", path, i, g.Name)
		}
		seen[g.Name] = true
	}
	return nil
}

func (r *Raw) validateTriggers() error {
	seen := make(map[string]bool, len(r.Triggers))
	for i, t := range r.Triggers {
		if seen[t.Name] {
			return invalid("triggers[%d]: группа %q объявлена повторно", i, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

func (r *Raw) validateIntensity() error {
	for scene := range r.Intensity.SceneBumps {
		st := models.SceneType(scene)
		if st == models.SceneNeutral || !st.IsValid() {
			return invalid("intensity.scene_bumps: неизвестный тип сцены %q", scene)
		}
	}
	return nil
}

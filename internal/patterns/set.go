package patterns

import (
	"regexp"
	"sort"

	"soundscape-server/internal/models"
)

// Rule - скомпилированное правило оценки.
type Rule struct {
	Name     string
	Weight   float64
	Patterns []*regexp.Regexp
}

// SceneAudio - аудио, закрепленное за типом сцены.
type SceneAudio struct {
	Base         string
	Alternatives []string
}

// LocationGroup - группа ключевых слов локации со своим аудио-ключом.
type LocationGroup struct {
	Name     string
	Audio    string
	Keywords []string
	Matcher  *WordMatcher
}

// TriggerGroup - группа триггерных фраз. Matcher находит фразы группы слева направо,
// при совпадении в одной позиции выигрывает более длинная фраза.
type TriggerGroup struct {
	Name     string
	Priority int
	Sounds   []string
	Matcher  *WordMatcher
}

// Intensity - параметры эвристики интенсивности.
type Intensity struct {
	Base            float64
	LengthThreshold int
	LengthBump      float64
	SceneBumps      map[models.SceneType]float64
	GenreBumps      map[string]float64
}

// Set - скомпилированная, провалидированная и неизменяемая конфигурация паттернов.
// Создается один раз при старте и безопасно разделяется между горутинами.
// Срезы и мапы, которые возвращают методы, нельзя изменять.
type Set struct {
	defaultAudio      string
	fallbackSecondary string
	confidenceScale   float64

	scenes   []Rule
	contexts []Rule
	moods    []Rule

	multipliers map[string]map[models.SceneType]float64
	aliases     map[string]string

	sceneAudio       map[models.SceneType]SceneAudio
	locations        []LocationGroup
	locationsByGenre map[string][]LocationGroup
	moodAudio        map[string]string

	triggers []TriggerGroup

	intensity    Intensity
	emotionMoods map[string]string
}

// DefaultAudio - глобальный ключ аудио по умолчанию.
func (s *Set) DefaultAudio() string { return s.defaultAudio }

// FallbackSecondaryAudio - вторичная дорожка, если ни альтернативы, ни настроение не подошли.
func (s *Set) FallbackSecondaryAudio() string { return s.fallbackSecondary }

// ConfidenceScale - величина очков сцены, соответствующая уверенности 1.0.
func (s *Set) ConfidenceScale() float64 { return s.confidenceScale }

// Scenes возвращает правила сцен в порядке объявления.
func (s *Set) Scenes() []Rule { return s.scenes }

// Contexts возвращает правила контекстов в порядке объявления.
func (s *Set) Contexts() []Rule { return s.contexts }

// Moods возвращает правила настроений в порядке объявления.
func (s *Set) Moods() []Rule { return s.moods }

// ResolveGenre нормализует жанр и разворачивает алиасы. Пустая строка означает "без жанра".
func (s *Set) ResolveGenre(genre string) string {
	g := NormalizeGenre(genre)
	if canonical, ok := s.aliases[g]; ok {
		return canonical
	}
	return g
}

// Multiplier возвращает множитель жанра для типа сцены (1.0, если корректировки нет).
// genre должен быть уже нормализован через ResolveGenre.
func (s *Set) Multiplier(genre string, scene models.SceneType) (float64, bool) {
	byScene, ok := s.multipliers[genre]
	if !ok {
		return 1.0, false
	}
	m, ok := byScene[scene]
	if !ok {
		return 1.0, false
	}
	return m, true
}

// SceneAudio возвращает аудио для типа сцены.
func (s *Set) SceneAudio(scene models.SceneType) (SceneAudio, bool) {
	a, ok := s.sceneAudio[scene]
	return a, ok
}

// LocationPriority возвращает порядок групп локаций для жанра:
// базовый список с уже вставленными группами жанра.
func (s *Set) LocationPriority(genre string) []LocationGroup {
	if groups, ok := s.locationsByGenre[genre]; ok {
		return groups
	}
	return s.locations
}

// MoodAudio возвращает аудио для настроения.
func (s *Set) MoodAudio(mood string) (string, bool) {
	a, ok := s.moodAudio[mood]
	return a, ok
}

// Triggers возвращает группы триггеров по убыванию приоритета.
func (s *Set) Triggers() []TriggerGroup { return s.triggers }

// Intensity возвращает параметры эвристики интенсивности.
func (s *Set) Intensity() Intensity { return s.intensity }

// EmotionMood сопоставляет метку эмоции оракула с настроением.
func (s *Set) EmotionMood(label string) (string, bool) {
	m, ok := s.emotionMoods[normalizeKey(label)]
	return m, ok
}

// Genres возвращает отсортированные канонические имена жанров, для которых есть
// множители или собственный порядок локаций.
func (s *Set) Genres() []string {
	seen := make(map[string]struct{}, len(s.multipliers)+len(s.locationsByGenre))
	for g := range s.multipliers {
		seen[g] = struct{}{}
	}
	for g := range s.locationsByGenre {
		seen[g] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

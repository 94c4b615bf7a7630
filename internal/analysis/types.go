package analysis

import "soundscape-server/internal/models"

// SceneAnalysisResult - результат классификации сцены. Создается заново на каждый вызов и не изменяется.
type SceneAnalysisResult struct {
	PrimaryScene  models.SceneType    `json:"primary_scene"`
	SceneContext  models.SceneContext `json:"scene_context"`
	Mood          string              `json:"mood"`
	Intensity     float64             `json:"intensity"`
	Confidence    float64             `json:"confidence"`
	AudioPriority string              `json:"audio_priority"`
	Genre         string              `json:"genre,omitempty"`

	// Диагностика, дальше по конвейеру не используется
	Reasoning        []string `json:"reasoning"`
	GenreAdjustments []string `json:"genre_adjustments"`

	SceneScores   map[models.SceneType]float64    `json:"scene_scores"`
	ContextScores map[models.SceneContext]float64 `json:"context_scores"`
	MoodScores    map[string]float64              `json:"mood_scores"`
}

// TriggerMatch - триггерное слово, привязанное к позиции в тексте.
// CharacterPosition считается в рунах от начала текста.
type TriggerMatch struct {
	Word              string  `json:"word"`
	Group             string  `json:"group"`
	SoundFile         string  `json:"sound_file"`
	CharacterPosition int     `json:"character_position"`
	WordIndex         int     `json:"word_index"`
	TimingSeconds     float64 `json:"timing_seconds"`
	ContextSnippet    string  `json:"context_snippet"`
}

// SoundscapeResult - итоговая звуковая сцена страницы.
type SoundscapeResult struct {
	PrimaryAudio    string              `json:"primary_audio"`
	SecondaryAudio  string              `json:"secondary_audio"`
	CarpetTracks    []string            `json:"carpet_tracks"`
	TriggeredSounds []TriggerMatch      `json:"triggered_sounds"`
	Scene           SceneAnalysisResult `json:"scene"`

	// Error заполняется, если текст не удалось разобрать. В этом случае остальные поля содержат безопасные значения.
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// Input - входные данные для Compose.
type Input struct {
	Text  string
	Genre string
	// MoodScores - оценки настроений от внешнего источника (ML-оракул).
	// Если пусто, настроение оценивается правилами.
	MoodScores map[string]float64
}

package patterns

// Raw - таблицы паттернов в том виде, в каком они лежат в файле конфигурации.
// После загрузки Raw валидируется и компилируется в неизменяемый Set, напрямую в анализе не используется.
type Raw struct {
	DefaultAudio           string  `toml:"default_audio" yaml:"default_audio" json:"default_audio" validate:"required"`
	FallbackSecondaryAudio string  `toml:"fallback_secondary_audio" yaml:"fallback_secondary_audio" json:"fallback_secondary_audio" validate:"required"`
	ConfidenceScale        float64 `toml:"confidence_scale" yaml:"confidence_scale" json:"confidence_scale" validate:"gt=0"`

	Scenes   []RuleTable `toml:"scenes" yaml:"scenes" json:"scenes" validate:"required,min=1,dive"`
	Contexts []RuleTable `toml:"contexts" yaml:"contexts" json:"contexts" validate:"required,min=1,dive"`
	Moods    []RuleTable `toml:"moods" yaml:"moods" json:"moods" validate:"required,min=1,dive"`

	Genres []GenreTable `toml:"genres" yaml:"genres" json:"genres" validate:"dive"`

	SceneAudio        map[string]SceneAudioTable `toml:"scene_audio" yaml:"scene_audio" json:"scene_audio" validate:"required,dive"`
	Locations         []LocationTable            `toml:"locations" yaml:"locations" json:"locations" validate:"required,min=1,dive"`
	LocationOverrides []LocationOverrideTable    `toml:"location_overrides" yaml:"location_overrides" json:"location_overrides" validate:"dive"`
	MoodAudio         map[string]string          `toml:"mood_audio" yaml:"mood_audio" json:"mood_audio" validate:"required,dive,required"`

	Triggers []TriggerTable `toml:"triggers" yaml:"triggers" json:"triggers" validate:"dive"`

	Intensity    IntensityTable    `toml:"intensity" yaml:"intensity" json:"intensity"`
	EmotionMoods map[string]string `toml:"emotion_moods" yaml:"emotion_moods" json:"emotion_moods" validate:"dive,required"`
}

// RuleTable описывает одно правило оценки: сцену, контекст или настроение.
type RuleTable struct {
	Name     string   `toml:"name" yaml:"name" json:"name" validate:"required"`
	Weight   float64  `toml:"weight" yaml:"weight" json:"weight" validate:"gt=0"`
	Patterns []string `toml:"patterns" yaml:"patterns" json:"patterns" validate:"required,min=1,dive,required"`
}

// GenreTable - множители весов сцен для жанра.
type GenreTable struct {
	Name        string             `toml:"name" yaml:"name" json:"name" validate:"required"`
	Aliases     []string           `toml:"aliases" yaml:"aliases" json:"aliases" validate:"dive,required"`
	Multipliers map[string]float64 `toml:"multipliers" yaml:"multipliers" json:"multipliers" validate:"dive,gt=0"`
}

// SceneAudioTable - базовое аудио типа сцены и альтернативы для вторичной дорожки.
type SceneAudioTable struct {
	Base         string   `toml:"base" yaml:"base" json:"base" validate:"required"`
	Alternatives []string `toml:"alternatives" yaml:"alternatives" json:"alternatives" validate:"dive,required"`
}

// LocationTable - группа ключевых слов локации.
type LocationTable struct {
	Name     string   `toml:"name" yaml:"name" json:"name" validate:"required"`
	Keywords []string `toml:"keywords" yaml:"keywords" json:"keywords" validate:"required,min=1,dive,required"`
	Audio    string   `toml:"audio" yaml:"audio" json:"audio" validate:"required"`
}

// LocationOverrideTable - группы локаций, которые жанр вставляет в порядок приоритета.
type LocationOverrideTable struct {
	Genre    string          `toml:"genre" yaml:"genre" json:"genre" validate:"required"`
	InsertAt int             `toml:"insert_at" yaml:"insert_at" json:"insert_at" validate:"gte=0"`
	Groups   []LocationTable `toml:"groups" yaml:"groups" json:"groups" validate:"required,min=1,dive"`
}

// TriggerTable - группа триггерных слов и пул звуков для нее.
type TriggerTable struct {
	Name     string   `toml:"name" yaml:"name" json:"name" validate:"required"`
	Priority int      `toml:"priority" yaml:"priority" json:"priority"`
	Phrases  []string `toml:"phrases" yaml:"phrases" json:"phrases" validate:"required,min=1,dive,required"`
	Sounds   []string `toml:"sounds" yaml:"sounds" json:"sounds" validate:"required,min=1,dive,required"`
}

// IntensityTable - параметры эвристики интенсивности. Незаданные значения берутся по умолчанию.
type IntensityTable struct {
	Base            *float64           `toml:"base" yaml:"base" json:"base" validate:"omitempty,gte=0,lte=1"`
	LengthThreshold *int               `toml:"length_threshold" yaml:"length_threshold" json:"length_threshold" validate:"omitempty,gte=0"`
	LengthBump      *float64           `toml:"length_bump" yaml:"length_bump" json:"length_bump"`
	SceneBumps      map[string]float64 `toml:"scene_bumps" yaml:"scene_bumps" json:"scene_bumps"`
	GenreBumps      map[string]float64 `toml:"genre_bumps" yaml:"genre_bumps" json:"genre_bumps"`
}

// Значения эвристики интенсивности по умолчанию.
const (
	DefaultIntensityBase            = 0.5
	DefaultIntensityLengthThreshold = 200
	DefaultIntensityLengthBump      = 0.1
)

// DefaultSceneBumps - надбавки интенсивности за присутствие типа сцены.
func DefaultSceneBumps() map[string]float64 {
	return map[string]float64{"action": 0.3, "emotional": 0.2, "dialogue": 0.1}
}

// DefaultGenreBumps - надбавки интенсивности за жанр.
func DefaultGenreBumps() map[string]float64 {
	return map[string]float64{"thriller": 0.2, "horror": 0.3, "romance": -0.1}
}

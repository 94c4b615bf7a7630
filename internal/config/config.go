package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/oracle"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Config содержит конфигурацию Soundscape Service
type Config struct {
	// Настройки сервера
	Port               string        `envconfig:"SOUNDSCAPE_SERVER_PORT" default:"8090"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding        string        `envconfig:"LOG_ENCODING" default:"json"`
	Env                string        `envconfig:"ENV" default:"production"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	SecretsDir         string        `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	// Настройки PostgreSQL. Пустой DB_HOST - сервис работает без провайдера контента.
	DBHost        string        `envconfig:"DB_HOST"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER"`
	DBName        string        `envconfig:"DB_NAME"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	DBAutoMigrate bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	// Из DB_PASSWORD или секрета db_password
	DBPassword string `envconfig:"DB_PASSWORD"`

	// Настройки Redis. Пустой REDIS_ADDR отключает кэш, rate limit считается в памяти.
	RedisAddr          string        `envconfig:"REDIS_ADDR"`
	RedisPassword      string        `envconfig:"REDIS_PASSWORD"`
	RedisDB            int           `envconfig:"REDIS_DB" default:"0"`
	ContentCacheTTL    time.Duration `envconfig:"CONTENT_CACHE_TTL" default:"10m"`
	RateLimitPerMinute uint          `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	// Настройки RabbitMQ. Пустой RABBITMQ_URL отключает пакетный анализ.
	RabbitMQURL         string `envconfig:"RABBITMQ_URL"`
	AnalysisTaskQueue   string `envconfig:"ANALYSIS_TASK_QUEUE" default:"soundscape_analysis_tasks"`
	AnalysisResultQueue string `envconfig:"ANALYSIS_RESULT_QUEUE" default:"soundscape_analysis_results"`

	// Настройки анализа
	PatternsFile          string  `envconfig:"PATTERNS_FILE"`
	MaxTextRunes          int     `envconfig:"MAX_TEXT_RUNES" default:"100000"`
	ReadingWordsPerMinute float64 `envconfig:"READING_WORDS_PER_MINUTE" default:"200"`
	TriggerSoundSelection string  `envconfig:"TRIGGER_SOUND_SELECTION" default:"random"`
	TriggerSoundSeed      uint64  `envconfig:"TRIGGER_SOUND_SEED" default:"0"`

	// Источник настроения: rules | ollama | openai
	MoodSource string        `envconfig:"MOOD_SOURCE" default:"rules"`
	AIBaseURL  string        `envconfig:"AI_BASE_URL"`
	AIModel    string        `envconfig:"AI_MODEL"`
	AITimeout  time.Duration `envconfig:"AI_TIMEOUT" default:"20s"`
	// Из AI_API_KEY или секрета ai_api_key
	AIAPIKey string `envconfig:"AI_API_KEY"`
}

// LoadConfig загружает конфигурацию из .env (если есть), переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации soundscape-service: %w", err)
	}

	if cfg.DBHost != "" && cfg.DBPassword == "" {
		password, err := ReadSecret(cfg.SecretsDir, "db_password")
		if err != nil {
			return nil, fmt.Errorf("пароль БД не задан: %w", err)
		}
		cfg.DBPassword = password
	}
	if cfg.MoodSource == oracle.SourceOpenAI && cfg.AIAPIKey == "" {
		if key, err := ReadSecret(cfg.SecretsDir, "ai_api_key"); err == nil {
			cfg.AIAPIKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, которые envconfig проверить не может.
func (c *Config) Validate() error {
	var errs []error
	if c.DBHost != "" && (c.DBUser == "" || c.DBName == "") {
		errs = append(errs, errors.New("DB_USER и DB_NAME обязательны, если задан DB_HOST"))
	}
	if c.DBMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNECTIONS должен быть положительным, получено %d", c.DBMaxConns))
	}
	if c.MaxTextRunes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TEXT_RUNES должен быть положительным, получено %d", c.MaxTextRunes))
	}
	if c.ReadingWordsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("READING_WORDS_PER_MINUTE должен быть положительным, получено %v", c.ReadingWordsPerMinute))
	}
	if c.RateLimitPerMinute == 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE должен быть положительным"))
	}
	if _, err := analysis.NewSoundPicker(c.TriggerSoundSelection, c.TriggerSoundSeed); err != nil {
		errs = append(errs, fmt.Errorf("TRIGGER_SOUND_SELECTION: %w", err))
	}
	switch strings.ToLower(c.MoodSource) {
	case oracle.SourceRules:
	case oracle.SourceOllama, oracle.SourceOpenAI:
		if c.AIModel == "" {
			errs = append(errs, fmt.Errorf("AI_MODEL обязателен для MOOD_SOURCE=%s", c.MoodSource))
		}
		if c.MoodSource == oracle.SourceOllama && c.AIBaseURL == "" {
			errs = append(errs, errors.New("AI_BASE_URL обязателен для MOOD_SOURCE=ollama"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный MOOD_SOURCE: '%s'", c.MoodSource))
	}
	return errors.Join(errs...)
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// OracleConfig возвращает параметры оракула эмоций.
func (c *Config) OracleConfig() oracle.Config {
	return oracle.Config{
		Source:  c.MoodSource,
		BaseURL: c.AIBaseURL,
		Model:   c.AIModel,
		APIKey:  c.AIAPIKey,
		Timeout: c.AITimeout,
	}
}

// EngineOptions собирает опции движка анализа из конфигурации.
func (c *Config) EngineOptions(logger *zap.Logger) ([]analysis.Option, error) {
	picker, err := analysis.NewSoundPicker(c.TriggerSoundSelection, c.TriggerSoundSeed)
	if err != nil {
		return nil, err
	}
	return []analysis.Option{
		analysis.WithSoundPicker(picker),
		analysis.WithReadingSpeed(c.ReadingWordsPerMinute),
		analysis.WithMaxTextRunes(c.MaxTextRunes),
		analysis.WithLogger(logger),
	}, nil
}

// LogSummary пишет в лог конфигурацию без секретов.
func (c *Config) LogSummary(logger *zap.Logger) {
	dsn := "disabled"
	if c.DBHost != "" {
		dsn = fmt.Sprintf("postgres://%s:***@%s:%s/%s?sslmode=%s", c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
	}
	logger.Info("Конфигурация Soundscape Service загружена",
		zap.String("port", c.Port),
		zap.String("env", c.Env),
		zap.String("log_level", c.LogLevel),
		zap.String("db", dsn),
		zap.Bool("db_auto_migrate", c.DBAutoMigrate),
		zap.String("redis_addr", c.RedisAddr),
		zap.Duration("content_cache_ttl", c.ContentCacheTTL),
		zap.Bool("rabbitmq_enabled", c.RabbitMQURL != ""),
		zap.String("analysis_task_queue", c.AnalysisTaskQueue),
		zap.String("analysis_result_queue", c.AnalysisResultQueue),
		zap.String("patterns_file", c.PatternsFile),
		zap.String("trigger_sound_selection", c.TriggerSoundSelection),
		zap.String("mood_source", c.MoodSource),
		zap.String("ai_model", c.AIModel),
	)
}

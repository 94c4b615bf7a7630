package patterns

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed default_patterns.toml
var defaultPatternsTOML []byte

// DefaultTOML возвращает копию встроенных таблиц паттернов.
func DefaultTOML() []byte {
	return append([]byte(nil), defaultPatternsTOML...)
}

// LoadDefault компилирует встроенные таблицы паттернов.
func LoadDefault() (*Set, error) {
	return Parse(defaultPatternsTOML)
}

// Parse разбирает таблицы в формате TOML и компилирует их.
func Parse(data []byte) (*Set, error) {
	raw, err := DecodeTOML(data)
	if err != nil {
		return nil, err
	}
	return Compile(raw)
}

// DecodeTOML разбирает TOML в строгом режиме: неизвестные ключи считаются ошибкой конфигурации.
func DecodeTOML(data []byte) (*Raw, error) {
	var raw Raw
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: ошибка разбора TOML: %v", ErrInvalidConfig, err)
	}
	return &raw, nil
}

// Load загружает таблицы паттернов из файла. Пустой путь означает встроенные таблицы.
// TOML читается строгим декодером, YAML и JSON - через cleanenv.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return LoadDefault()
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать файл паттернов %s: %w", ErrInvalidConfig, path, err)
		}
		return Parse(data)
	case ".yaml", ".yml", ".json":
		var raw Raw
		if err := cleanenv.ReadConfig(path, &raw); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать файл паттернов %s: %w", ErrInvalidConfig, path, err)
		}
		return Compile(&raw)
	default:
		return nil, fmt.Errorf("%w: неподдерживаемый формат файла паттернов %q", ErrInvalidConfig, ext)
	}
}

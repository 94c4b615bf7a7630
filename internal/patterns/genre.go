package patterns

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeGenre приводит строку жанра к каноническому виду: NFKC, case folding,
// пробелы и подчеркивания заменяются на дефис ("Science_Fiction" -> "science-fiction").
func NormalizeGenre(genre string) string {
	return normalizeKey(genre)
}

// normalizeKey используется для жанров, алиасов и меток эмоций.
func normalizeKey(key string) string {
	g := strings.TrimSpace(key)
	if g == "" {
		return ""
	}
	// cases.Caser хранит состояние, поэтому создается на каждый вызов
	g = cases.Fold().String(norm.NFKC.String(g))
	parts := strings.FieldsFunc(g, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	return strings.Join(parts, "-")
}

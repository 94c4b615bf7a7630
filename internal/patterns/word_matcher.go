package patterns

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// WordMatcher ищет литеральные фразы целыми словами. \b в RE2 понимает только ASCII,
// поэтому граница слова проверяется по соседним рунам: буква, цифра, метка или '_' границей не являются.
type WordMatcher struct {
	any  *regexp.Regexp
	alts []*regexp.Regexp // якорные варианты, длинные фразы первыми
}

// FindString возвращает первое совпадение или "".
func (m *WordMatcher) FindString(text string) string {
	if start, end, ok := m.next(text, 0); ok {
		return text[start:end]
	}
	return ""
}

// FindAllStringIndex возвращает байтовые диапазоны непересекающихся совпадений слева направо.
func (m *WordMatcher) FindAllStringIndex(text string) [][]int {
	var out [][]int
	pos := 0
	for {
		start, end, ok := m.next(text, pos)
		if !ok {
			return out
		}
		out = append(out, []int{start, end})
		pos = end
	}
}

// next ищет первое совпадение на границах слов, начиная с байта pos.
func (m *WordMatcher) next(text string, pos int) (int, int, bool) {
	for pos < len(text) {
		loc := m.any.FindStringIndex(text[pos:])
		if loc == nil {
			return 0, 0, false
		}
		start := pos + loc[0]
		if wordBoundaryBefore(text, start) {
			if end := pos + loc[1]; wordBoundaryAfter(text, end) {
				return start, end, true
			}
			// Самая длинная фраза обрывается внутри слова, пробуем более короткие с той же позиции
			for _, alt := range m.alts {
				if l := alt.FindStringIndex(text[start:]); l != nil && wordBoundaryAfter(text, start+l[1]) {
					return start, start + l[1], true
				}
			}
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return 0, 0, false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func wordBoundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func wordBoundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

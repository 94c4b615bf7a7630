package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// snippetRadius - сколько рун контекста берется с каждой стороны от триггера.
const snippetRadius = 30

type span struct {
	start, end int // байтовые смещения
	group      int
}

// FindTriggers находит триггерные слова в тексте.
//
// Группы просматриваются по убыванию приоритета, совпадения внутри группы - слева направо.
// Совпадение, пересекающееся с уже принятым, отбрасывается. Результат упорядочен по таймингу.
func (e *Engine) FindTriggers(text string) []TriggerMatch {
	if IsBlank(text) {
		return []TriggerMatch{}
	}

	groups := e.set.Triggers()
	// accepted упорядочен по start и не содержит пересечений
	var accepted []span
	for gi, g := range groups {
		var found []span
		for _, loc := range g.Matcher.FindAllStringIndex(text) {
			candidate := span{start: loc[0], end: loc[1], group: gi}
			if overlapsAny(accepted, candidate) {
				continue
			}
			found = append(found, candidate)
		}
		if len(found) > 0 {
			accepted = mergeSpans(accepted, found)
		}
	}
	if len(accepted) == 0 {
		return []TriggerMatch{}
	}

	tokenStarts := wordStarts(text)
	totalRunes := utf8.RuneCountInString(text)
	readingSeconds := float64(len(tokenStarts)) / e.wordsPerMinute * 60

	matches := make([]TriggerMatch, 0, len(accepted))
	runePos, bytePos := 0, 0
	for _, s := range accepted {
		runePos += utf8.RuneCountInString(text[bytePos:s.start])
		bytePos = s.start

		word := text[s.start:s.end]
		group := groups[s.group]
		matches = append(matches, TriggerMatch{
			Word:              word,
			Group:             group.Name,
			SoundFile:         e.picker.Pick(group.Name, group.Sounds, word, runePos),
			CharacterPosition: runePos,
			WordIndex:         wordIndexAt(tokenStarts, s.start),
			TimingSeconds:     round2(float64(runePos) / float64(totalRunes) * readingSeconds),
			ContextSnippet:    snippet(text, s.start, s.end),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].TimingSeconds != matches[j].TimingSeconds {
			return matches[i].TimingSeconds < matches[j].TimingSeconds
		}
		return matches[i].CharacterPosition < matches[j].CharacterPosition
	})
	return matches
}

// overlapsAny проверяет пересечение c с отсортированными непересекающимися accepted.
// Достаточно соседей по позиции вставки.
func overlapsAny(accepted []span, c span) bool {
	i := sort.Search(len(accepted), func(i int) bool { return accepted[i].start >= c.start })
	if i > 0 && accepted[i-1].end > c.start {
		return true
	}
	return i < len(accepted) && accepted[i].start < c.end
}

// mergeSpans сливает два отсортированных по start среза.
func mergeSpans(a, b []span) []span {
	out := make([]span, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].start <= b[j].start {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// wordStarts возвращает байтовые смещения начала каждого токена, разделенного пробельными символами.
func wordStarts(text string) []int {
	var starts []int
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			starts = append(starts, i)
			inWord = true
		}
	}
	return starts
}

// wordIndexAt - номер токена, в котором находится байтовое смещение offset.
func wordIndexAt(starts []int, offset int) int {
	n := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	if n == 0 {
		return 0
	}
	return n - 1
}

// snippet возвращает до snippetRadius рун вокруг совпадения со схлопнутыми пробелами.
func snippet(text string, start, end int) string {
	from := start
	for i := 0; i < snippetRadius && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < snippetRadius && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.Join(strings.Fields(text[from:to]), " ")
}

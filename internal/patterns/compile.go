package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"soundscape-server/internal/models"
)

// Compile валидирует сырые таблицы и собирает из них неизменяемый Set.
// Все регулярные выражения компилируются здесь: RE2 дает линейное время сопоставления,
// поэтому на входном тексте нет катастрофического бэктрекинга.
func Compile(raw *Raw) (*Set, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	set := &Set{
		defaultAudio:      raw.DefaultAudio,
		fallbackSecondary: raw.FallbackSecondaryAudio,
		confidenceScale:   raw.ConfidenceScale,
		multipliers:       make(map[string]map[models.SceneType]float64, len(raw.Genres)),
		aliases:           make(map[string]string),
		sceneAudio:        make(map[models.SceneType]SceneAudio, len(raw.SceneAudio)),
		locationsByGenre:  make(map[string][]LocationGroup, len(raw.LocationOverrides)),
		moodAudio:         make(map[string]string, len(raw.MoodAudio)),
		emotionMoods:      make(map[string]string, len(raw.EmotionMoods)),
	}

	var err error
	if set.scenes, err = compileRules("scenes", raw.Scenes); err != nil {
		return nil, err
	}
	if set.contexts, err = compileRules("contexts", raw.Contexts); err != nil {
		return nil, err
	}
	if set.moods, err = compileRules("moods", raw.Moods); err != nil {
		return nil, err
	}

	for _, g := range raw.Genres {
		name := NormalizeGenre(g.Name)
		byScene := make(map[models.SceneType]float64, len(g.Multipliers))
		for scene, m := range g.Multipliers {
			byScene[models.SceneType(scene)] = m
		}
		set.multipliers[name] = byScene
		for _, a := range g.Aliases {
			set.aliases[NormalizeGenre(a)] = name
		}
	}

	for scene, audio := range raw.SceneAudio {
		set.sceneAudio[models.SceneType(scene)] = SceneAudio{
			Base:         audio.Base,
			Alternatives: append([]string(nil), audio.Alternatives...),
		}
	}

	if set.locations, err = compileLocations("locations", raw.Locations); err != nil {
		return nil, err
	}
	for i, o := range raw.LocationOverrides {
		groups, err := compileLocations(fmt.Sprintf("location_overrides[%d].groups", i), o.Groups)
		if err != nil {
			return nil, err
		}
		genre := set.ResolveGenre(o.Genre)
		current, ok := set.locationsByGenre[genre]
		if !ok {
			current = set.locations
		}
		set.locationsByGenre[genre] = insertGroups(current, o.InsertAt, groups)
	}

	for mood, audio := range raw.MoodAudio {
		set.moodAudio[mood] = audio
	}
	for label, mood := range raw.EmotionMoods {
		set.emotionMoods[normalizeKey(label)] = mood
	}

	if set.triggers, err = compileTriggers(raw.Triggers); err != nil {
		return nil, err
	}

	set.intensity = compileIntensity(raw.Intensity)
	return set, nil
}

func compileRules(path string, tables []RuleTable) ([]Rule, error) {
	rules := make([]Rule, 0, len(tables))
	for i, t := range tables {
		rule := Rule{Name: t.Name, Weight: t.Weight, Patterns: make([]*regexp.Regexp, 0, len(t.Patterns))}
		for j, p := range t.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, invalid("%s[%d].patterns[%d]: некорректное выражение %q: %v", path, i, j, p, err)
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compileLocations(path string, tables []LocationTable) ([]LocationGroup, error) {
	groups := make([]LocationGroup, 0, len(tables))
	for i, t := range tables {
		re, err := compileWordMatcher(t.Keywords)
		if err != nil {
			return nil, invalid("%s[%d]: %v", path, i, err)
		}
		groups = append(groups, LocationGroup{
			Name:     t.Name,
			Audio:    t.Audio,
			Keywords: append([]string(nil), t.Keywords...),
			Matcher:  re,
		})
	}
	return groups, nil
}

// insertGroups возвращает новый срез: groups вставлены в позицию at (с обрезкой по длине), base не меняется.
func insertGroups(base []LocationGroup, at int, groups []LocationGroup) []LocationGroup {
	if at > len(base) {
		at = len(base)
	}
	out := make([]LocationGroup, 0, len(base)+len(groups))
	out = append(out, base[:at]...)
	out = append(out, groups...)
	out = append(out, base[at:]...)
	return out
}

func compileTriggers(tables []TriggerTable) ([]TriggerGroup, error) {
	groups := make([]TriggerGroup, 0, len(tables))
	for i, t := range tables {
		re, err := compileWordMatcher(t.Phrases)
		if err != nil {
			return nil, invalid("triggers[%d]: %v", i, err)
		}
		groups = append(groups, TriggerGroup{
			Name:     t.Name,
			Priority: t.Priority,
			Sounds:   append([]string(nil), t.Sounds...),
			Matcher:  re,
		})
	}
	// При равном приоритете сохраняется порядок объявления
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Priority > groups[j].Priority
	})
	return groups, nil
}

// compileWordMatcher собирает из литеральных фраз WordMatcher. Go regexp выбирает первую
// подходящую альтернативу, поэтому длинные фразы идут первыми.
func compileWordMatcher(phrases []string) (*WordMatcher, error) {
	sorted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("пустая фраза")
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	m := &WordMatcher{alts: make([]*regexp.Regexp, 0, len(sorted))}
	quoted := make([]string, len(sorted))
	for i, p := range sorted {
		quoted[i] = strings.Join(strings.Fields(regexp.QuoteMeta(p)), `\s+`)
		alt, err := regexp.Compile(`(?i)^(?:` + quoted[i] + `)`)
		if err != nil {
			return nil, err
		}
		m.alts = append(m.alts, alt)
	}
	anyRe, err := regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, err
	}
	m.any = anyRe
	return m, nil
}

func compileIntensity(t IntensityTable) Intensity {
	in := Intensity{
		Base:            DefaultIntensityBase,
		LengthThreshold: DefaultIntensityLengthThreshold,
		LengthBump:      DefaultIntensityLengthBump,
		SceneBumps:      make(map[models.SceneType]float64),
		GenreBumps:      make(map[string]float64),
	}
	if t.Base != nil {
		in.Base = *t.Base
	}
	if t.LengthThreshold != nil {
		in.LengthThreshold = *t.LengthThreshold
	}
	if t.LengthBump != nil {
		in.LengthBump = *t.LengthBump
	}

	sceneBumps := t.SceneBumps
	if sceneBumps == nil {
		sceneBumps = DefaultSceneBumps()
	}
	for scene, bump := range sceneBumps {
		in.SceneBumps[models.SceneType(scene)] = bump
	}

	genreBumps := t.GenreBumps
	if genreBumps == nil {
		genreBumps = DefaultGenreBumps()
	}
	for genre, bump := range genreBumps {
		in.GenreBumps[NormalizeGenre(genre)] = bump
	}
	return in
}

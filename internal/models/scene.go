package models

// SceneType - грубая классификация повествовательного режима страницы.
type SceneType string

const (
	SceneDialogue    SceneType = "dialogue"
	SceneAction      SceneType = "action"
	SceneDescriptive SceneType = "descriptive"
	SceneEmotional   SceneType = "emotional"
	SceneTransition  SceneType = "transition"
	SceneNeutral     SceneType = "neutral"
)

// ScoredSceneTypes - типы сцен, для которых задаются паттерны, в порядке объявления по умолчанию.
// neutral не оценивается: это значение при отсутствии совпадений.
var ScoredSceneTypes = []SceneType{SceneDialogue, SceneAction, SceneDescriptive, SceneEmotional, SceneTransition}

// AllSceneTypes включает neutral.
var AllSceneTypes = append(append([]SceneType{}, ScoredSceneTypes...), SceneNeutral)

// IsValid проверяет, что тип сцены известен.
func (s SceneType) IsValid() bool {
	for _, t := range AllSceneTypes {
		if t == s {
			return true
		}
	}
	return false
}

// SceneContext - физическое окружение сцены.
type SceneContext string

const (
	ContextIndoor  SceneContext = "indoor"
	ContextOutdoor SceneContext = "outdoor"
	ContextUrban   SceneContext = "urban"
	ContextRural   SceneContext = "rural"
	ContextNatural SceneContext = "natural"
	ContextBuilt   SceneContext = "built"
)

// AllSceneContexts - допустимые контексты.
var AllSceneContexts = []SceneContext{ContextIndoor, ContextOutdoor, ContextUrban, ContextRural, ContextNatural, ContextBuilt}

// IsValid проверяет, что контекст известен.
func (c SceneContext) IsValid() bool {
	for _, v := range AllSceneContexts {
		if v == c {
			return true
		}
	}
	return false
}

// MoodNeutral - настроение по умолчанию.
const MoodNeutral = "neutral"

package messaging

import (
	"soundscape-server/internal/analysis"

	"github.com/google/uuid"
)

// Статусы результата пакетного анализа.
const (
	ResultStatusSuccess  = "success"
	ResultStatusNotFound = "not_found"
	ResultStatusInvalid  = "invalid"
	ResultStatusError    = "error"
)

// AnalysisTaskPayload - задача анализа одной страницы.
// Нужен либо Text, либо полный адрес страницы.
type AnalysisTaskPayload struct {
	TaskID  string     `json:"task_id"`
	BookID  *uuid.UUID `json:"book_id,omitempty"`
	Chapter *int       `json:"chapter,omitempty"`
	Page    *int       `json:"page,omitempty"`
	Text    string     `json:"text,omitempty"`
	Genre   *string    `json:"genre,omitempty"`
}

// AnalysisResultPayload - результат задачи, публикуется в очередь результатов.
type AnalysisResultPayload struct {
	TaskID  string                     `json:"task_id"`
	BookID  *uuid.UUID                 `json:"book_id,omitempty"`
	Chapter *int                       `json:"chapter,omitempty"`
	Page    *int                       `json:"page,omitempty"`
	Status  string                     `json:"status"`
	Error   string                     `json:"error,omitempty"`
	Result  *analysis.SoundscapeResult `json:"result,omitempty"`
}

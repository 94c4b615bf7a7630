package handler

import (
	"soundscape-server/internal/analysis"

	"github.com/google/uuid"
)

// ClassifyRequest - тело POST /api/v1/scenes/classify
type ClassifyRequest struct {
	Text  string `json:"text"`
	Genre string `json:"genre" binding:"max=64"`
}

// SoundscapeRequest - тело POST /api/v1/soundscapes.
// Либо text, либо полный адрес страницы (book_id, chapter, page).
type SoundscapeRequest struct {
	Text    string     `json:"text"`
	BookID  *uuid.UUID `json:"book_id"`
	Chapter *int       `json:"chapter" binding:"omitempty,min=0"`
	Page    *int       `json:"page" binding:"omitempty,min=0"`
	Genre   *string    `json:"genre" binding:"omitempty,max=64"`
}

// TriggersRequest - тело POST /api/v1/triggers
type TriggersRequest struct {
	Text string `json:"text"`
}

// TriggersResponse - ответ POST /api/v1/triggers
type TriggersResponse struct {
	Triggers []analysis.TriggerMatch `json:"triggers"`
}

// pageURI - параметры пути GET .../books/:book_id/chapters/:chapter/pages/:page/soundscape
type pageURI struct {
	BookID  string `uri:"book_id" binding:"required,uuid"`
	Chapter int    `uri:"chapter" binding:"min=0"`
	Page    int    `uri:"page" binding:"min=0"`
}

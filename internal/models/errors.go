package models

import "errors"

// Application-wide standard errors
var (
	// Content provider errors
	ErrNotFound     = errors.New("resource not found") // General not found
	ErrBookNotFound = errors.New("book not found")
	ErrPageNotFound = errors.New("page not found")

	// Сервис контента не сконфигурирован (нет БД)
	ErrContentUnavailable = errors.New("content provider is not configured")

	// Analysis input errors
	ErrInvalidInput    = errors.New("invalid input data")
	ErrTextTooLong     = errors.New("text exceeds maximum length")
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")

	// ML emotion oracle
	ErrOracleUnavailable = errors.New("emotion oracle unavailable")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
)

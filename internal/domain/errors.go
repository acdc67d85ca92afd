package domain

import "errors"

var (
	// ErrInvalidInput is wrapped with a field-level message and maps to 400.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUserNotFound is returned when a user id or uid resolves to nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound covers unknown, expired and already-submitted sessions.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNoQuestions indicates the chosen triple has no quiz content.
	ErrNoQuestions = errors.New("no questions for this selection")
	// ErrQuestionNotFound indicates an unknown question id on admin update.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrDuplicateName indicates a catalog name collision.
	ErrDuplicateName = errors.New("name already exists")
	// ErrStreakNotReady means less than 24h passed since the last credit.
	ErrStreakNotReady = errors.New("streak already updated in the last 24 hours")
	// ErrUnauthorized is returned when no valid identity accompanies a request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBanned refuses banned accounts on every authenticated surface.
	ErrBanned = errors.New("account is banned")
)

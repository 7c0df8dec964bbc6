package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Registration errors
	ErrValidation          = errors.New("validation failed")
	ErrPlayerAlreadyExists = errors.New("player already exists")
	ErrAlreadyRegistered   = errors.New("connection already has a registered player")
	ErrNotRegistered       = errors.New("player not registered")
	ErrPlayerNotFound      = errors.New("player not found")

	// Matchmaking errors
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrOpponentNotFound = errors.New("opponent not found")

	// Game errors
	ErrGameNotActive = errors.New("game not active")
	ErrGameNotFound  = errors.New("game not found")
	ErrNotYourTurn   = errors.New("not this player's turn")

	// Board errors
	ErrColumnOutOfRange = errors.New("column out of range")
	ErrColumnFull       = errors.New("column is full")
	ErrInvalidSide      = errors.New("invalid side")
	ErrBoardFinished    = errors.New("board is finished")

	// Protocol errors
	ErrDecode = errors.New("failed to decode request")

	// Registry indices disagree; indicates a bug
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// ValidationError reports a rejected request field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is makes ValidationError match ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// GameError attaches the id of the game a request referred to
type GameError struct {
	GameID GameID
	Err    error
}

func (e *GameError) Error() string {
	return fmt.Sprintf("game %s: %v", e.GameID, e.Err)
}

func (e *GameError) Unwrap() error {
	return e.Err
}

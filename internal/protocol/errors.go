package protocol

import (
	"errors"
	"fmt"

	"github.com/mcoot/connectfour-go/internal/model"
)

// Error codes carried by ErrorResponse
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodePlayerAlreadyExists = "PLAYER_ALREADY_EXISTS"
	CodeAlreadyRegistered   = "ALREADY_REGISTERED"
	CodeNotRegistered       = "NOT_REGISTERED"
	CodeNotEnoughPlayers    = "NOT_ENOUGH_PLAYERS"
	CodeOpponentNotFound    = "OPPONENT_NOT_FOUND"
	CodeGameNotActive       = "GAME_NOT_ACTIVE"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeInvalidMove         = "INVALID_MOVE"
	CodeDecodeFailed        = "DECODE_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// ErrorFor converts an error into the response sent back to the client
func ErrorFor(err error) *Response {
	e := &ErrorResponse{}

	var ge *model.GameError
	if errors.As(err, &ge) {
		e.GameID = string(ge.GameID)
	}

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		e.Code, e.Message = CodeValidationFailed, ve.Reason
	case errors.Is(err, model.ErrPlayerAlreadyExists):
		e.Code, e.Message = CodePlayerAlreadyExists, "Player already exists."
	case errors.Is(err, model.ErrAlreadyRegistered):
		e.Code, e.Message = CodeAlreadyRegistered, "A player is already registered on this connection."
	case errors.Is(err, model.ErrNotRegistered):
		e.Code, e.Message = CodeNotRegistered, "Player is not registered."
	case errors.Is(err, model.ErrNotEnoughPlayers):
		e.Code, e.Message = CodeNotEnoughPlayers, "Not enough players."
	case errors.Is(err, model.ErrOpponentNotFound):
		e.Code, e.Message = CodeOpponentNotFound, "Opponent is no longer available."
	case errors.Is(err, model.ErrGameNotActive):
		e.Code, e.Message = CodeGameNotActive, fmt.Sprintf("Game with id %s is not active.", e.GameID)
	case errors.Is(err, model.ErrNotYourTurn):
		e.Code, e.Message = CodeNotYourTurn, "It is not your turn."
	case errors.Is(err, model.ErrColumnOutOfRange):
		e.Code, e.Message = CodeInvalidMove, "Column is out of range."
	case errors.Is(err, model.ErrColumnFull):
		e.Code, e.Message = CodeInvalidMove, "Column is full."
	case errors.Is(err, model.ErrDecode):
		e.Code, e.Message = CodeDecodeFailed, "Failed to parse request. Please ensure that the request is valid."
	default:
		e.Code, e.Message = CodeInternalError, "Internal server error."
	}

	return &Response{Error: e}
}

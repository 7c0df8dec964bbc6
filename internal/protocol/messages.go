package protocol

import "github.com/mcoot/connectfour-go/internal/model"

// RequestKind names the variant carried by a Request
type RequestKind string

const (
	RequestKindNone         RequestKind = ""
	RequestKindRegistration RequestKind = "registration"
	RequestKindNewGame      RequestKind = "new_game"
	RequestKindMove         RequestKind = "move"
	RequestKindMessage      RequestKind = "message"
)

// Request is the envelope for every client-to-server message.
// Exactly one field is set.
type Request struct {
	Registration *RegistrationRequest `msgpack:"registration,omitempty"`
	NewGame      *NewGameRequest      `msgpack:"new_game,omitempty"`
	Move         *MoveRequest         `msgpack:"move,omitempty"`
	Message      *MessageRequest      `msgpack:"message,omitempty"`
}

// RegistrationRequest asks to register the connection's player
type RegistrationRequest struct {
	Username    string `msgpack:"username"`
	DisplayName string `msgpack:"display_name"`
	Agent       bool   `msgpack:"agent,omitempty"`
}

// NewGameRequest asks to be matched against an active player
type NewGameRequest struct{}

// MoveRequest drops a coin into a column
type MoveRequest struct {
	GameID string `msgpack:"game_id"`
	Column int    `msgpack:"column"`
}

// MessageRequest sends chat text to the opponent
type MessageRequest struct {
	GameID string `msgpack:"game_id"`
	Text   string `msgpack:"text"`
}

// Kind returns the variant carried by the request, or RequestKindNone
// when zero or several variants are set
func (r *Request) Kind() RequestKind {
	kinds := make([]RequestKind, 0, 1)
	if r.Registration != nil {
		kinds = append(kinds, RequestKindRegistration)
	}
	if r.NewGame != nil {
		kinds = append(kinds, RequestKindNewGame)
	}
	if r.Move != nil {
		kinds = append(kinds, RequestKindMove)
	}
	if r.Message != nil {
		kinds = append(kinds, RequestKindMessage)
	}
	if len(kinds) != 1 {
		return RequestKindNone
	}
	return kinds[0]
}

// NewRegistration builds a registration request
func NewRegistration(username, displayName string, agent bool) *Request {
	return &Request{Registration: &RegistrationRequest{Username: username, DisplayName: displayName, Agent: agent}}
}

// NewGame builds a new-game request
func NewGame() *Request {
	return &Request{NewGame: &NewGameRequest{}}
}

// NewMove builds a move request
func NewMove(gameID model.GameID, column int) *Request {
	return &Request{Move: &MoveRequest{GameID: string(gameID), Column: column}}
}

// NewMessage builds a chat request
func NewMessage(gameID model.GameID, text string) *Request {
	return &Request{Message: &MessageRequest{GameID: string(gameID), Text: text}}
}

// ResponseKind names the variant carried by a Response
type ResponseKind string

const (
	ResponseKindNone                ResponseKind = ""
	ResponseKindRegistrationSuccess ResponseKind = "registration_success"
	ResponseKindNewGame             ResponseKind = "new_game"
	ResponseKindAvailableMoves      ResponseKind = "available_moves"
	ResponseKindGameEnd             ResponseKind = "game_end"
	ResponseKindMessage             ResponseKind = "message"
	ResponseKindError               ResponseKind = "error"
)

// Response is the envelope for every server-to-client message.
// Exactly one field is set.
type Response struct {
	RegistrationSuccess *RegistrationSuccess `msgpack:"registration_success,omitempty"`
	NewGame             *NewGameResponse     `msgpack:"new_game,omitempty"`
	AvailableMoves      *AvailableMoves      `msgpack:"available_moves,omitempty"`
	GameEnd             *GameEnd             `msgpack:"game_end,omitempty"`
	Message             *MessageResponse     `msgpack:"message,omitempty"`
	Error               *ErrorResponse       `msgpack:"error,omitempty"`
}

// RegistrationSuccess confirms a registration
type RegistrationSuccess struct{}

// NewGameResponse announces a new game to one participant
type NewGameResponse struct {
	GameID              string `msgpack:"game_id"`
	OpponentDisplayName string `msgpack:"opponent_display_name"`
	OpponentRating      int    `msgpack:"opponent_rating"`
	MakeFirstMove       bool   `msgpack:"make_first_move"`
}

// AvailableMoves tells the player whose turn it is which columns are open
type AvailableMoves struct {
	GameID  string `msgpack:"game_id"`
	Columns []int  `msgpack:"columns"`
}

// GameEnd reports the result of a game to one participant
type GameEnd struct {
	GameID string           `msgpack:"game_id"`
	Result model.GameResult `msgpack:"result"`
	Reason model.EndReason  `msgpack:"reason,omitempty"`
}

// MessageResponse carries chat text from the opponent
type MessageResponse struct {
	GameID            string `msgpack:"game_id"`
	SenderDisplayName string `msgpack:"sender_display_name"`
	Text              string `msgpack:"text"`
}

// ErrorResponse reports a rejected request
type ErrorResponse struct {
	Code    string `msgpack:"code"`
	Message string `msgpack:"message"`
	GameID  string `msgpack:"game_id,omitempty"`
}

// Kind returns the variant carried by the response, or ResponseKindNone
// when zero or several variants are set
func (r *Response) Kind() ResponseKind {
	kinds := make([]ResponseKind, 0, 1)
	if r.RegistrationSuccess != nil {
		kinds = append(kinds, ResponseKindRegistrationSuccess)
	}
	if r.NewGame != nil {
		kinds = append(kinds, ResponseKindNewGame)
	}
	if r.AvailableMoves != nil {
		kinds = append(kinds, ResponseKindAvailableMoves)
	}
	if r.GameEnd != nil {
		kinds = append(kinds, ResponseKindGameEnd)
	}
	if r.Message != nil {
		kinds = append(kinds, ResponseKindMessage)
	}
	if r.Error != nil {
		kinds = append(kinds, ResponseKindError)
	}
	if len(kinds) != 1 {
		return ResponseKindNone
	}
	return kinds[0]
}

// RegistrationSucceeded builds a registration success response
func RegistrationSucceeded() *Response {
	return &Response{RegistrationSuccess: &RegistrationSuccess{}}
}

// GameStarted builds the new-game notice for one participant
func GameStarted(gameID model.GameID, opponent model.Player, makeFirstMove bool) *Response {
	return &Response{NewGame: &NewGameResponse{
		GameID:              string(gameID),
		OpponentDisplayName: opponent.DisplayName,
		OpponentRating:      opponent.Rating,
		MakeFirstMove:       makeFirstMove,
	}}
}

// MovesAvailable builds an available-moves response
func MovesAvailable(gameID model.GameID, columns []int) *Response {
	return &Response{AvailableMoves: &AvailableMoves{GameID: string(gameID), Columns: columns}}
}

// GameEnded builds a game-end response
func GameEnded(gameID model.GameID, result model.GameResult, reason model.EndReason) *Response {
	return &Response{GameEnd: &GameEnd{GameID: string(gameID), Result: result, Reason: reason}}
}

// ChatMessage builds a chat relay response
func ChatMessage(gameID model.GameID, senderDisplayName, text string) *Response {
	return &Response{Message: &MessageResponse{
		GameID:            string(gameID),
		SenderDisplayName: senderDisplayName,
		Text:              text,
	}}
}

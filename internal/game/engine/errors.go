package engine

import "errors"

// Code identifies a game error variant.
type Code string

// Error codes.
const (
	CodeNotInProgress    Code = "NOT_IN_PROGRESS"
	CodeNotYourTurn      Code = "NOT_YOUR_TURN"
	CodeInvalidPlay      Code = "INVALID_PLAY"
	CodeRoomFull         Code = "ROOM_FULL"
	CodeDuplicatePlayer  Code = "DUPLICATE_PLAYER"
	CodeNotEnoughPlayers Code = "NOT_ENOUGH_PLAYERS"
	CodeMissingColor     Code = "MISSING_COLOR"
	CodeCardNotFound     Code = "CARD_NOT_FOUND"
	CodeUnknownPlayer    Code = "UNKNOWN_PLAYER"
)

// Error is a game rule or invariant failure with a variant code. Sentinel
// values below are matchable with errors.Is.
type Error struct {
	Code    Code
	Message string
}

// Error returns the human-readable message.
func (e *Error) Error() string { return e.Message }

// Is matches two engine errors by code, so wrapped errors compare against the
// sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel errors for every engine failure mode.
var (
	ErrNotInProgress    = &Error{CodeNotInProgress, "game is not in progress"}
	ErrNotYourTurn      = &Error{CodeNotYourTurn, "not your turn"}
	ErrInvalidPlay      = &Error{CodeInvalidPlay, "card cannot be played on the current discard"}
	ErrRoomFull         = &Error{CodeRoomFull, "game is full"}
	ErrDuplicatePlayer  = &Error{CodeDuplicatePlayer, "player ID already exists"}
	ErrNotEnoughPlayers = &Error{CodeNotEnoughPlayers, "not enough players to start"}
	ErrMissingColor     = &Error{CodeMissingColor, "wild play requires a chosen color"}
	ErrCardNotFound     = &Error{CodeCardNotFound, "card not found in player's hand"}
	ErrUnknownPlayer    = &Error{CodeUnknownPlayer, "player not in this game"}
)

// IsDefect reports whether err signals a broken upstream invariant rather
// than a user-facing rule violation. Defects should be logged loudly; rule
// violations are ordinary client mistakes.
func IsDefect(err error) bool {
	return errors.Is(err, ErrCardNotFound)
}

package engine

import "errors"

// Validation errors. Callers discard the offending request; none of these
// is ever reported back to the acting client.
var (
	ErrNicknameRequired = errors.New("nickname is required")
	ErrNicknameTooLong  = errors.New("nickname is too long")
	ErrNicknameTaken    = errors.New("nickname already taken")
	ErrConnectionInUse  = errors.New("connection already joined")
	ErrSessionFull      = errors.New("session is full")
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrGameEnded        = errors.New("game has ended")
	ErrNotInSession     = errors.New("player not in session")
	ErrNotAlive         = errors.New("player is not alive")
	ErrSilenced         = errors.New("player is silenced")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrDuplicateVote    = errors.New("vote already cast for target")
	ErrInvalidDecision  = errors.New("invalid verdict decision")
	ErrNotAuthorized    = errors.New("role lacks capability")
	ErrUnknownAction    = errors.New("unknown night action")
	ErrExecuteUsed      = errors.New("execute already used")
	ErrRosterMismatch   = errors.New("roster size does not match player count")
)

package engine

import "errors"

// Construction errors.
var (
	ErrInvalidLayout = errors.New("engine: invalid layout")
	ErrInvalidKinds  = errors.New("engine: invalid kinds")
	ErrTokenCount    = errors.New("engine: token count does not match room capacity")
	ErrOverlap       = errors.New("engine: tokens overlap or sit outside the burrow")
	ErrUnknownPhase  = errors.New("engine: unknown phase")
	ErrCorruptKey    = errors.New("engine: corrupt configuration key")
	ErrBadOption     = errors.New("engine: invalid search option")
	ErrNilConfig     = errors.New("engine: config cannot be nil")
)

// Move errors.
var (
	ErrNoSuchToken = errors.New("engine: no such token")
	ErrTokenFinal  = errors.New("engine: token is already in its final position")
	ErrIllegalMove = errors.New("engine: illegal move")
)

// Abort reasons carried by Result.Reason when Outcome is OutcomeAborted.
var (
	ErrCanceled       = errors.New("engine: search canceled")
	ErrTimeLimit      = errors.New("engine: time limit exceeded")
	ErrExpansionLimit = errors.New("engine: expansion limit exceeded")
	ErrStateLimit     = errors.New("engine: dominance table limit exceeded")
	ErrFrontierLimit  = errors.New("engine: frontier limit exceeded")
)

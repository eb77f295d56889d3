package game

import "errors"

var (
	// ErrInvalidConfig is returned when a game cannot be created from a Config.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrIllegalMove is returned for a turn outside [1, min(max per turn, remaining)].
	ErrIllegalMove = errors.New("illegal move")
	// ErrGameOver is returned for a turn or give-up after a winner is recorded.
	ErrGameOver = errors.New("game over")
	// ErrUnknownAction is returned for an Action with an unrecognised Kind.
	ErrUnknownAction = errors.New("unknown action")
)

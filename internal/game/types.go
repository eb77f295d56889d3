// internal/game/types.go
//
// Core type definitions for the pebbles game engine.
// Defines:
//   - DifficultyLevel: configured opponent strength (currently inert).
//   - Player: the two sides, User and Program.
//   - Config: init-time input for a new game.
//   - State: the persisted snapshot of a single game.
//   - Action / Event: engine input and outcome.

package game

import (
	"fmt"
	"strings"
)

// DifficultyLevel is stored and round-tripped but does not change the opponent.
type DifficultyLevel string

const (
	DifficultyEasy DifficultyLevel = "easy"
	DifficultyHard DifficultyLevel = "hard"
)

// ParseDifficulty accepts "easy"/"hard" in any case. Empty means easy.
func ParseDifficulty(s string) (DifficultyLevel, error) {
	switch d := DifficultyLevel(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DifficultyEasy, nil
	case DifficultyEasy, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, s)
	}
}

// Player identifies a side.
type Player string

const (
	PlayerUser    Player = "user"
	PlayerProgram Player = "program"
)

// Config is the input to Initialize and Restart. An empty Difficulty means easy.
type Config struct {
	Difficulty        DifficultyLevel `json:"difficulty"`
	PebblesCount      uint32          `json:"pebblesCount"`
	MaxPebblesPerTurn uint32          `json:"maxPebblesPerTurn"`
}

// Validate reports ErrInvalidConfig when either count is zero or the difficulty is unknown.
func (c Config) Validate() error {
	if c.PebblesCount == 0 {
		return fmt.Errorf("%w: pebbles count must be positive", ErrInvalidConfig)
	}
	if c.MaxPebblesPerTurn == 0 {
		return fmt.Errorf("%w: max pebbles per turn must be positive", ErrInvalidConfig)
	}
	switch c.Difficulty {
	case "", DifficultyEasy, DifficultyHard:
		return nil
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, c.Difficulty)
	}
}

// State holds the state of a single game.
type State struct {
	PebblesCount      uint32          `json:"pebblesCount"`      // Original pile size.
	MaxPebblesPerTurn uint32          `json:"maxPebblesPerTurn"` // Per-turn cap for both sides.
	PebblesRemaining  uint32          `json:"pebblesRemaining"`  // Current pile.
	Difficulty        DifficultyLevel `json:"difficulty"`
	FirstPlayer       Player          `json:"firstPlayer"`
	Winner            *Player         `json:"winner,omitempty"` // nil while the game is live.
}

// Live reports whether no winner has been recorded yet.
func (s State) Live() bool { return s.Winner == nil }

// Config returns the configuration the game was created with.
func (s State) Config() Config {
	return Config{
		Difficulty:        s.Difficulty,
		PebblesCount:      s.PebblesCount,
		MaxPebblesPerTurn: s.MaxPebblesPerTurn,
	}
}

// ActionKind tags an Action.
type ActionKind string

const (
	ActionTurn    ActionKind = "turn"
	ActionGiveUp  ActionKind = "give_up"
	ActionRestart ActionKind = "restart"
)

// Action is a caller request applied to a State.
// Count is used by turn actions, Config by restart actions.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Count  uint32     `json:"count,omitempty"`
	Config Config     `json:"config"`
}

// Turn removes n pebbles on behalf of the user.
func Turn(n uint32) Action { return Action{Kind: ActionTurn, Count: n} }

// GiveUp concedes the game to the program.
func GiveUp() Action { return Action{Kind: ActionGiveUp} }

// Restart replaces the game with a fresh one built from cfg.
func Restart(cfg Config) Action { return Action{Kind: ActionRestart, Config: cfg} }

// EventKind tags an Event.
type EventKind string

const (
	EventCounterTurn EventKind = "counter_turn"
	EventWon         EventKind = "won"
)

// Event is the outcome of a turn or give-up.
type Event struct {
	Kind   EventKind `json:"kind"`
	Count  uint32    `json:"count,omitempty"`  // Pebbles removed by the program (counter_turn).
	Winner Player    `json:"winner,omitempty"` // Set for won.
}

// CounterTurn is the program's reply when the game continues.
func CounterTurn(n uint32) Event { return Event{Kind: EventCounterTurn, Count: n} }

// Won reports the terminal outcome.
func Won(p Player) Event { return Event{Kind: EventWon, Winner: p} }

func (e Event) String() string {
	if e.Kind == EventWon {
		return fmt.Sprintf("won(%s)", e.Winner)
	}
	return fmt.Sprintf("%s(%d)", e.Kind, e.Count)
}

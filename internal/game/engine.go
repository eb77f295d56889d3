// internal/game/engine.go
//
// Rules engine for a single pebbles game.
// Responsibilities:
//   - Create new games, picking the first player at random.
//   - Resolve user turns followed by the program's counter turn.
//   - Detect wins, handle give-up and restart.
//
// Notes:
//   - The engine is stateless: every call takes a State by value and returns the next one.
//   - Randomness is injected through RandomSource so tests can script it.
//   - On error the input state is returned unchanged.
package game

import "fmt"

// Initialize creates a new game from cfg.
//
// The first player is User when the first draw is even, Program otherwise.
// When Program starts it makes its opening move immediately. If that move
// empties the pile the winner is still left unset; the win is reported by
// the next Turn.
func Initialize(cfg Config, rng RandomSource) (State, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = DifficultyEasy
	}

	first := chooseFirstPlayer(rng)
	remaining := cfg.PebblesCount
	if first == PlayerProgram {
		remaining -= opponentMove(remaining, cfg.MaxPebblesPerTurn, rng)
	}

	return State{
		PebblesCount:      cfg.PebblesCount,
		MaxPebblesPerTurn: cfg.MaxPebblesPerTurn,
		PebblesRemaining:  remaining,
		Difficulty:        cfg.Difficulty,
		FirstPlayer:       first,
	}, nil
}

// Apply resolves action against state.
// Returns the new state and, for turn and give-up actions, the resulting event.
// Restart returns a fresh state and a nil event.
//
// Validation rules:
//   - Turn and GiveUp are rejected with ErrGameOver once a winner is recorded.
//   - A turn must remove between 1 and min(MaxPebblesPerTurn, PebblesRemaining).
//   - Restart validates its config like Initialize and is allowed from any state.
func Apply(state State, action Action, rng RandomSource) (State, *Event, error) {
	switch action.Kind {
	case ActionTurn:
		return applyTurn(state, action.Count, rng)
	case ActionGiveUp:
		if !state.Live() {
			return state, nil, ErrGameOver
		}
		return finish(state, PlayerProgram)
	case ActionRestart:
		next, err := Initialize(action.Config, rng)
		if err != nil {
			return state, nil, err
		}
		return next, nil, nil
	default:
		return state, nil, fmt.Errorf("%w: %q", ErrUnknownAction, action.Kind)
	}
}

// Query returns the current snapshot unchanged.
func Query(state State) State { return state }

// applyTurn removes n pebbles for the user, then lets the program answer.
func applyTurn(state State, n uint32, rng RandomSource) (State, *Event, error) {
	if !state.Live() {
		return state, nil, ErrGameOver
	}
	// The program emptied the pile with its opening move.
	if state.PebblesRemaining == 0 {
		return finish(state, PlayerProgram)
	}
	if limit := min(state.MaxPebblesPerTurn, state.PebblesRemaining); n < 1 || n > limit {
		return state, nil, fmt.Errorf("%w: must remove between 1 and %d pebbles, got %d", ErrIllegalMove, limit, n)
	}

	state.PebblesRemaining -= n
	if state.PebblesRemaining == 0 {
		return finish(state, PlayerUser)
	}

	taken := opponentMove(state.PebblesRemaining, state.MaxPebblesPerTurn, rng)
	state.PebblesRemaining -= taken
	if state.PebblesRemaining == 0 {
		return finish(state, PlayerProgram)
	}
	ev := CounterTurn(taken)
	return state, &ev, nil
}

// finish records winner and returns the matching Won event.
func finish(state State, winner Player) (State, *Event, error) {
	state.Winner = &winner
	ev := Won(winner)
	return state, &ev, nil
}

func chooseFirstPlayer(rng RandomSource) Player {
	if rng.NextUint32()%2 == 0 {
		return PlayerUser
	}
	return PlayerProgram
}

// opponentMove is the program's policy: take everything when the cap covers
// the pile, otherwise a uniform draw from [1, perTurn].
func opponentMove(remaining, perTurn uint32, rng RandomSource) uint32 {
	if perTurn >= remaining {
		return remaining
	}
	return rng.NextUint32()%perTurn + 1
}

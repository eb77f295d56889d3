// internal/httpserver/routes_game.go
//
// Game endpoints. Every mutation goes through play, which runs one engine
// action under the session lock and persists the result:
//   - POST /game/new          → create a session (owner: user or anon cookie)
//   - GET  /game/{id}         → current state
//   - POST /game/{id}/turn    → user removes {count} pebbles, program replies
//   - POST /game/{id}/giveup  → concede to the program
//   - POST /game/{id}/restart → fresh game, same session ID (empty body: same config)
//
// Finished games are appended to the results history (best effort).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pebbles/internal/game"
	"github.com/robalobadob/pebbles/internal/results"
	"github.com/robalobadob/pebbles/internal/store"
)

// mountGame registers the /game routes. They stay flat so the ws route can
// share the /game/{id} prefix from outside the timeout group.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Post("/game/{id}/turn", s.handleTurn)
	r.Post("/game/{id}/giveup", s.handleGiveUp)
	r.Post("/game/{id}/restart", s.handleRestart)
}

// gameRes is returned by every game endpoint.
type gameRes struct {
	GameID string      `json:"gameId"`
	State  game.State  `json:"state"`
	Turns  int         `json:"turns"`
	Event  *game.Event `json:"event,omitempty"`
}

// turnReq is the body of POST /game/{id}/turn.
type turnReq struct {
	Count uint32 `json:"count"`
}

func newGameRes(sess *store.Session, ev *game.Event) gameRes {
	return gameRes{GameID: sess.ID, State: game.Query(sess.State), Turns: sess.Turns, Event: ev}
}

// decodeBody decodes JSON into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// clientConfig normalizes a client-supplied config ("HARD" → hard, "" → easy).
func clientConfig(cfg game.Config) (game.Config, error) {
	d, err := game.ParseDifficulty(string(cfg.Difficulty))
	if err != nil {
		return cfg, err
	}
	cfg.Difficulty = d
	return cfg, nil
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var cfg game.Config
	if err := decodeBody(r, &cfg); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	cfg, err := clientConfig(cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.newSession(r.Context(), s.ownerID(w, r), cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, newGameRes(sess, nil))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, newGameRes(sess, nil))
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	s.respondPlay(w, r, game.Turn(req.Count))
}

func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	s.respondPlay(w, r, game.GiveUp())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var cfg game.Config
	if err := decodeBody(r, &cfg); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	if cfg != (game.Config{}) {
		var err error
		if cfg, err = clientConfig(cfg); err != nil {
			writeError(w, r, err)
			return
		}
	}
	s.respondPlay(w, r, game.Restart(cfg))
}

func (s *Server) respondPlay(w http.ResponseWriter, r *http.Request, action game.Action) {
	sess, ev, err := s.play(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, newGameRes(sess, ev))
}

// newSession initializes a game for owner and saves it.
func (s *Server) newSession(ctx context.Context, owner string, cfg game.Config) (*store.Session, error) {
	st, err := game.Initialize(cfg, s.rng)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &store.Session{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		State:     st,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Debug().Str("gameId", sess.ID).Str("owner", owner).Str("firstPlayer", string(st.FirstPlayer)).Msg("game created")
	return sess, nil
}

// play applies one action to a stored session. Actions on the same session
// are serialized; a rejected action leaves the stored session untouched.
func (s *Server) play(ctx context.Context, id string, action game.Action) (*store.Session, *game.Event, error) {
	unlock, err := s.locks.lock(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	wasLive := sess.State.Live()
	// An empty restart replays the current configuration.
	if action.Kind == game.ActionRestart && action.Config == (game.Config{}) {
		action.Config = sess.State.Config()
	}

	next, ev, err := game.Apply(sess.State, action, s.rng)
	if err != nil {
		return nil, nil, err
	}

	sess.State = next
	switch action.Kind {
	case game.ActionRestart:
		sess.Turns = 0
	case game.ActionTurn:
		sess.Turns++
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, nil, err
	}

	if wasLive && !next.Live() {
		s.recordResult(ctx, sess, action.Kind == game.ActionGiveUp)
	}
	return sess, ev, nil
}

// recordResult appends a finished game to the history. Failures are logged only.
func (s *Server) recordResult(ctx context.Context, sess *store.Session, gaveUp bool) {
	res, err := results.FromState(sess.ID, sess.OwnerID, sess.State, sess.Turns, gaveUp, sess.UpdatedAt)
	if err == nil {
		err = s.results.Record(ctx, res)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("record result")
	}
}

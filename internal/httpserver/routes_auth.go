// internal/httpserver/routes_auth.go
//
// Account and profile endpoints:
//   - POST /auth/signup, /auth/login → set auth cookie, claim anon games
//   - POST /auth/logout              → clear auth cookie
//   - GET  /auth/me                  → current user (gated)
//   - GET  /stats/me                 → played / wins / losses / streak (gated)
//   - GET  /games/mine               → recent sessions (gated)
//   - GET  /history/mine             → finished games (gated)
//   - GET  /leaderboard?limit=N      → owners ranked by wins (public)

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/pebbles/internal/auth"
)

// credentialsReq is the body of signup and login.
type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// recentGamesLimit caps /games/mine and /history/mine.
const recentGamesLimit = 50

// mountAuth registers authentication, profile and leaderboard routes.
func (s *Server) mountAuth(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)
	r.Get("/leaderboard", s.handleLeaderboard)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, currentUser(r))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
		r.Get("/history/mine", s.handleMyHistory)
	})
}

// handleSignup creates a user, signs a token, sets the cookie, and claims anon games.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeBody(r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, sessionUser(u))
}

// handleLogin authenticates, sets the cookie, and claims anon games.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeBody(r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, sessionUser(u))
}

// signIn issues the auth cookie for u. It writes the error response and
// returns false when signing fails.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.tokens.Sign(u)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	s.setAuthCookie(w, tok, exp)
	s.claimAnonGames(r, u.ID)
	return true
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	st, err := s.results.Stats(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"id":          me.ID,
		"gamesPlayed": st.GamesPlayed,
		"wins":        st.Wins,
		"losses":      st.Losses,
		"streak":      st.Streak,
	})
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListByOwner(r.Context(), currentUser(r).ID, recentGamesLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, sessions)
}

func (s *Server) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.ForOwner(r.Context(), currentUser(r).ID, recentGamesLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

// handleLeaderboard returns the top owners; ?limit defaults to the store's default.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeJSONError(w, http.StatusBadRequest, "bad_limit", "limit must be 1-100")
			return
		}
		limit = n
	}
	rows, err := s.results.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

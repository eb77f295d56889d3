// internal/httpserver/server.go
//
// HTTP server wiring for the pebbles backend.
// Responsibilities:
//   - Router + middleware (request IDs, request logging, panic recovery, CORS, timeouts, JSON).
//   - Public endpoints: "/", "/health", "/leaderboard".
//   - Game endpoints (optional auth): /game/new, /game/{id}, /game/{id}/turn|giveup|restart.
//   - Live play over WebSocket: /game/{id}/ws.
//   - Auth + profile endpoints: /auth/*, /stats/me, /games/mine, /history/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     guests are identified by an anonymous cookie instead.
//   - The WebSocket route sits outside the request timeout.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pebbles/internal/auth"
	"github.com/robalobadob/pebbles/internal/config"
	"github.com/robalobadob/pebbles/internal/game"
	"github.com/robalobadob/pebbles/internal/results"
	"github.com/robalobadob/pebbles/internal/store"
)

// Server bundles the router with the game, history and account stores.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	store    store.Store
	results  *results.Store
	users    *auth.Users
	tokens   *auth.Tokens
	rng      game.RandomSource
	locks    *sessionLocks
	upgrader websocket.Upgrader
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
// db must already be migrated; st may be backed by the same database or by memory.
func New(cfg config.Config, st store.Store, db *sql.DB, rng game.RandomSource) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		store:   st,
		results: results.NewStore(db),
		users:   auth.NewUsers(db),
		tokens:  auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL()),
		rng:     rng,
		locks:   newSessionLocks(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)        // add X-Request-ID
	s.r.Use(chimw.RealIP)           // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)          // one log line per request
	s.r.Use(chimw.Recoverer)        // recover from panics
	s.r.Use(cors(cfg.ClientOrigin)) // credentials-friendly CORS
	s.r.Use(s.withOptionalAuth)     // user context when a token is present

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
		r.Use(jsonContentType)                   // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"pebbles","endpoints":["/health","POST /game/new","POST /game/{id}/turn","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountGame(r)
		s.mountAuth(r)
	})

	// Live play; hijacked connections must not inherit the request timeout.
	s.r.Get("/game/{id}/ws", s.handleWebSocket)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
func (s *Server) Router() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes a structured access log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("requestId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------ responses ----------------------------------

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSONError writes an errorBody with status, labelled as JSON.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	writeJSON(w, errorBody{Error: code, Message: message})
}

// errorCode maps domain errors to an HTTP status and a stable code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, game.ErrIllegalMove):
		return http.StatusBadRequest, "illegal_move"
	case errors.Is(err, game.ErrUnknownAction):
		return http.StatusBadRequest, "unknown_action"
	case errors.Is(err, game.ErrGameOver):
		return http.StatusConflict, "game_over"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "busy"
	case errors.Is(err, auth.ErrInvalidSignup):
		return http.StatusBadRequest, "invalid_signup"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError writes err as a JSON error response. Unexpected errors are logged
// and their message withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("requestId", chimw.GetReqID(r.Context())).Msg("request failed")
		msg = ""
	}
	writeJSONError(w, status, code, msg)
}

// logWarn records a best-effort failure that does not fail the request.
func logWarn(r *http.Request, err error, msg string) {
	log.Warn().Err(err).Str("requestId", chimw.GetReqID(r.Context())).Msg(msg)
}

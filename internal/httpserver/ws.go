// internal/httpserver/ws.go
//
// Live play over WebSocket: GET /game/{id}/ws.
//
// Every frame is a JSON envelope {"type": ..., "data": ...}.
//   client → server: "turn" {count}, "giveup", "restart" {config} (omit data to replay), "state"
//   server → client: "state" {gameId,state,turns}, "event" {gameId,state,turns,event},
//                    "error" {error,message}
//
// The connection gets the current state on open. Actions go through the same
// play path as the HTTP routes, so they share its locking and history writes.
// All writes happen on one goroutine, which also sends pings.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pebbles/internal/game"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsWriteWait  = 10 * time.Second
	wsReadLimit  = 512
)

// wsMessage is the envelope for every frame in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func newWSMessage(typ string, v any) wsMessage {
	b, _ := json.Marshal(v)
	return wsMessage{Type: typ, Data: b}
}

func wsError(err error) wsMessage {
	_, code := errorCode(err)
	return newWSMessage("error", errorBody{Error: code, Message: err.Error()})
}

// checkOrigin accepts non-browser clients, the configured client origin, and same-host pages.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	ctx, cancel := context.WithCancel(context.Background())
	egress := make(chan wsMessage, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		wsWriteLoop(ctx, conn, egress)
	}()
	defer func() {
		cancel()
		<-done
	}()

	logger := log.With().Str("gameId", id).Logger()
	logger.Debug().Msg("ws connected")
	egress <- newWSMessage("state", newGameRes(sess, nil))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("ws read")
			}
			return
		}
		reply := s.dispatchWS(ctx, id, raw)
		select {
		case egress <- reply:
		case <-done:
			return
		}
	}
}

// dispatchWS runs one client frame and builds the reply.
func (s *Server) dispatchWS(ctx context.Context, id string, raw []byte) wsMessage {
	var msg wsMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return newWSMessage("error", errorBody{Error: "bad_json"})
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	var action game.Action
	switch msg.Type {
	case "state":
		sess, err := s.store.Get(ctx, id)
		if err != nil {
			return wsError(err)
		}
		return newWSMessage("state", newGameRes(sess, nil))
	case "turn":
		var req turnReq
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return newWSMessage("error", errorBody{Error: "bad_json"})
		}
		action = game.Turn(req.Count)
	case "giveup":
		action = game.GiveUp()
	case "restart":
		var cfg game.Config
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &cfg); err != nil {
				return newWSMessage("error", errorBody{Error: "bad_json"})
			}
		}
		if cfg != (game.Config{}) {
			var err error
			if cfg, err = clientConfig(cfg); err != nil {
				return wsError(err)
			}
		}
		action = game.Restart(cfg)
	default:
		return newWSMessage("error", errorBody{Error: "unknown_action", Message: msg.Type})
	}

	sess, ev, err := s.play(ctx, id, action)
	if err != nil {
		return wsError(err)
	}
	if ev == nil {
		return newWSMessage("state", newGameRes(sess, nil))
	}
	return newWSMessage("event", newGameRes(sess, ev))
}

// wsWriteLoop owns all writes on conn until ctx is cancelled or a write fails.
// A failed write closes conn so the read loop returns too.
func wsWriteLoop(ctx context.Context, conn *websocket.Conn, egress <-chan wsMessage) {
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		case msg := <-egress:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Msg("ws write")
				// Unblock the reader instead of waiting out the pong deadline.
				_ = conn.Close()
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

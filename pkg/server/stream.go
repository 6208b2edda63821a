package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/consolenav/pkg/navigator"
)

// Message types on the live navigation stream.
const (
	MessageNavigate   = "navigate"
	MessageNavigation = "navigation"
	MessageError      = "error"
)

// ClientMessage is sent by the shell.
type ClientMessage struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// ServerMessage is sent to the shell.
type ServerMessage struct {
	Type       string                `json:"type"`
	Seq        uint64                `json:"seq,omitempty"`
	Navigation *navigator.Navigation `json:"navigation,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// stream is one live navigation connection.
type stream struct {
	srv     *Server
	conn    *websocket.Conn
	session *navigator.Session

	// writeMu serializes data frames; control frames may be written
	// concurrently.
	writeMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc

	inflight sync.WaitGroup
}

// handleStream upgrades to a WebSocket and runs navigations sent by the
// client. ?recover=true replaces failed navigations with the fallback.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	s.streams.Add(1)
	defer s.streams.Done()

	st := &stream{srv: s, conn: conn}
	opts := []navigator.SessionOption{navigator.OnCommit(st.commit)}
	if st.srv.recoverFor(r) {
		opts = append(opts, navigator.WithRecovery())
	}
	st.session = s.nav.NewSession(opts...)

	st.run()
}

func (st *stream) run() {
	s := st.srv
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.metrics != nil {
		s.metrics.StreamOpened()
		defer s.metrics.StreamClosed()
	}
	s.logger.Debug("stream opened", "remote", st.conn.RemoteAddr().String())

	var background sync.WaitGroup
	background.Add(2)
	go func() {
		defer background.Done()
		st.heartbeat(ctx)
	}()
	go func() {
		defer background.Done()
		select {
		case <-s.closing:
			st.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(s.config.WriteTimeout))
			st.conn.Close()
		case <-ctx.Done():
		}
	}()

	st.readLoop(ctx)

	cancel()
	st.inflight.Wait()
	background.Wait()
	st.conn.Close()
	s.logger.Debug("stream closed", "remote", st.conn.RemoteAddr().String())
}

// readLoop reads client messages until the connection fails.
func (st *stream) readLoop(ctx context.Context) {
	s := st.srv
	st.conn.SetReadLimit(s.config.MaxMessageSize)
	st.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, data, err := st.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		st.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			st.send(ServerMessage{Type: MessageError, Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case MessageNavigate:
			if msg.URL == "" {
				st.send(ServerMessage{Type: MessageError, Error: "navigate requires a url"})
				continue
			}
			st.navigate(ctx, msg.URL)
		default:
			s.logger.Warn("unknown message type", "type", msg.Type)
			st.send(ServerMessage{Type: MessageError, Error: "unknown message type " + strconv.Quote(msg.Type)})
		}
	}
}

// navigate starts a navigation and cancels the one in flight, if any.
func (st *stream) navigate(ctx context.Context, url string) {
	navCtx, cancel := context.WithTimeout(ctx, st.srv.config.NavigateTimeout)

	st.mu.Lock()
	if st.cancel != nil {
		st.cancel()
	}
	st.cancel = cancel
	st.mu.Unlock()

	seq := st.session.Reserve()
	st.inflight.Add(1)
	go func() {
		defer st.inflight.Done()
		defer cancel()
		if _, ok := st.session.NavigateReserved(navCtx, seq, url); !ok && st.srv.metrics != nil {
			st.srv.metrics.Superseded()
		}
	}()
}

// commit runs under the session lock, so results go out in sequence order.
func (st *stream) commit(nav *navigator.Navigation) {
	st.send(ServerMessage{Type: MessageNavigation, Seq: nav.Seq, Navigation: nav})
}

func (st *stream) send(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		st.srv.logger.Error("encode message", "error", err)
		return
	}

	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	st.conn.SetWriteDeadline(time.Now().Add(st.srv.config.WriteTimeout))
	if err := st.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		st.srv.logger.Debug("write error", "error", err)
	}
}

func (st *stream) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(st.srv.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(st.srv.config.WriteTimeout)
			if err := st.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				st.srv.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/plausch-chat/plausch/internal/broker"
)

const (
	pongWait      = 60 * time.Second
	pingInterval  = 54 * time.Second
	writeWait     = 10 * time.Second
	outboundQueue = 16
)

// WebSocketHandler bridges a WebSocket connection onto the broker: inbound
// frames are dispatched through the router, and the session continuously
// long-polls the client's pending slot to push deliveries out.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "Username is required.", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	// An existing session just means the client reconnected; polling will
	// replace its slot.
	if _, err := s.registry.Register(username); err != nil && !errors.Is(err, broker.ErrUsernameTaken) {
		s.logger.Error("WebSocket registration failed", "username", username, "error", err)
		_ = conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	sess := &wsSession{
		id:       uuid.NewString(),
		username: username,
		conn:     conn,
		server:   s,
		outbound: make(chan broker.Message, outboundQueue),
		pollDone: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	s.logger.Info("WebSocket session started", "session", sess.id, "username", username, "remote", r.RemoteAddr)

	go sess.pollPump()
	go sess.writePump()
	sess.readPump()
}

// wsSession is one WebSocket connection bound to a broker session. pollDone
// is closed when pollPump exits; teardown must not deregister the session
// before then, or a BeginLongPoll racing the removal would recreate it.
type wsSession struct {
	id       string
	username string
	conn     *websocket.Conn
	server   *Server
	outbound chan broker.Message
	pollDone chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// readPump consumes inbound frames and dispatches them through the router.
// Synchronous router replies (weather answers, rejections) are pushed back to
// this client as System messages.
func (sess *wsSession) readPump() {
	defer sess.teardown()

	sess.conn.SetReadLimit(sess.server.cfg.MaxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := sess.conn.ReadMessage()
		if err != nil {
			sess.logReadError(err)
			return
		}

		if !sess.server.limiters.allow(sess.username) {
			sess.server.logger.Warn("rate limit exceeded", "session", sess.id, "username", sess.username)
			continue
		}

		var msg broker.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			sess.server.logger.Warn("invalid WebSocket message", "session", sess.id, "error", err)
			continue
		}
		msg.Sender = sess.username

		outcome := sess.server.router.Dispatch(sess.ctx, msg)
		if outcome.Status == broker.StatusCreated {
			continue
		}

		reply := broker.Message{
			Sender:    "System",
			Content:   outcome.Text,
			Color:     "Red",
			Timestamp: time.Now(),
		}
		select {
		case sess.outbound <- reply:
		case <-sess.ctx.Done():
			return
		}
	}
}

// pollPump repeatedly installs and awaits a pending slot for this client,
// forwarding deliveries to the writer.
func (sess *wsSession) pollPump() {
	defer close(sess.pollDone)

	for {
		slot := sess.server.registry.BeginLongPoll(sess.username)
		msg, err := slot.Await(sess.ctx)
		if err != nil {
			return
		}

		select {
		case sess.outbound <- msg:
		case <-sess.ctx.Done():
			return
		}
	}
}

// writePump owns all writes to the connection: deliveries, replies, pings.
func (sess *wsSession) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-sess.outbound:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteJSON(msg); err != nil {
				if !isExpectedCloseError(err) {
					sess.server.logger.Warn("WebSocket write failed", "session", sess.id, "error", err)
				}
				sess.cancel()
				return
			}

		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.cancel()
				return
			}

		case <-sess.ctx.Done():
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = sess.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// teardown ends the broker session and closes the connection. It waits for
// pollPump to exit before deregistering, so no poll can resurrect the
// session after Remove.
func (sess *wsSession) teardown() {
	sess.cancel()
	<-sess.pollDone
	sess.server.registry.Remove(sess.username)
	if err := sess.conn.Close(); err != nil && !isExpectedCloseError(err) {
		sess.server.logger.Warn("error closing WebSocket connection", "session", sess.id, "error", err)
	}
	sess.server.logger.Info("WebSocket session ended", "session", sess.id, "username", sess.username)
}

func (sess *wsSession) logReadError(err error) {
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		sess.server.logger.Debug("WebSocket client disconnected", "session", sess.id, "error", err)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		sess.server.logger.Debug("WebSocket connection closed", "session", sess.id, "error", err)
	default:
		sess.server.logger.Warn("WebSocket read error", "session", sess.id, "error", err)
	}
}

// isExpectedCloseError checks if an error is expected during connection
// closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}

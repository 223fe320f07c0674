// Package websocket accepts browser input over WebSocket and forwards it to
// the runtime loop.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/gaim/internal/config"
	"github.com/zeusync/gaim/internal/core/observability/log"
	"github.com/zeusync/gaim/internal/host"
)

const (
	shutdownTimeout = 5 * time.Second
	writeTimeout    = time.Second
)

// reply is sent back to a client whose message could not be delivered.
type reply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Server is the WebSocket input host. Each connection gets its own reader
// goroutine; decoded messages are posted to the runtime loop in arrival
// order per connection.
type Server struct {
	cfg      config.WebSocketConfig
	rt       host.Runtime
	upgrader websocket.Upgrader
	logger   log.Log

	mu       sync.Mutex
	conns    map[*websocket.Conn]string
	closed   bool
	listener net.Listener
	readers  sync.WaitGroup
}

func NewServer(cfg config.WebSocketConfig, rt host.Runtime, logger log.Log) *Server {
	if logger == nil {
		logger = log.Provide()
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	s := &Server{
		cfg:    cfg,
		rt:     rt,
		logger: logger.With(log.String("host", "websocket")),
		conns:  make(map[*websocket.Conn]string),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin accepts any origin when no list is configured, and requests
// without an Origin header, which browsers always send.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(s.cfg.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	s.logger.Warn("origin rejected",
		log.String("origin", origin),
		log.String("remote_addr", r.RemoteAddr))
	return false
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleWebSocket)
	return mux
}

// Addr returns the bound address while Serve is listening, nil otherwise.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve listens on the configured address until ctx ends, then shuts the
// listener down, closes open connections and waits for their readers.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrap(err, "websocket listen")
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.closed = false
	s.mu.Unlock()

	s.logger.Info("websocket host listening",
		log.String("addr", listener.Addr().String()),
		log.String("path", s.cfg.Path))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()

	select {
	case err = <-errCh:
		s.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "websocket host")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	s.closeAll()
	s.logger.Info("websocket host stopped")
	return err
}

// Sessions returns the number of open connections.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// track registers conn unless the server is closing. The reader count is
// raised under the same lock closeAll takes before waiting on it.
func (s *Server) track(conn *websocket.Conn, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = id
	s.readers.Add(1)
	return true
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		return
	}
	if s.cfg.ReadLimit > 0 {
		conn.SetReadLimit(s.cfg.ReadLimit)
	}

	id := uuid.NewString()
	if !s.track(conn, id) {
		_ = conn.Close()
		return
	}
	defer s.readers.Done()

	logger := s.logger.With(
		log.String("session_id", id),
		log.String("remote_addr", conn.RemoteAddr().String()))
	logger.Info("session opened")

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
		logger.Info("session closed")
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read ended", log.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		if err = host.Deliver(s.rt, data); err != nil {
			logger.Warn("message dropped", log.Error(err))
			if werr := s.reject(conn, err); werr != nil {
				logger.Debug("reply failed", log.Error(werr))
				return
			}
		}
	}
}

// reject tells the client why its message was dropped. Only the reader
// goroutine writes to a connection.
func (s *Server) reject(conn *websocket.Conn, cause error) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(reply{Type: "error", Error: cause.Error()})
}

// closeAll refuses new sessions, closes the open ones and returns once
// every reader goroutine has exited.
func (s *Server) closeAll() {
	s.mu.Lock()
	s.closed = true
	s.listener = nil
	for conn := range s.conns {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.readers.Wait()
}

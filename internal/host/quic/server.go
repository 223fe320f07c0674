// Package quic accepts input over QUIC. Every client stream carries
// newline-delimited JSON messages in the codec format.
package quic

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/gaim/internal/config"
	"github.com/zeusync/gaim/internal/core/observability/log"
	"github.com/zeusync/gaim/internal/host"
)

const maxLine = 64 * 1024

type reply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type Server struct {
	cfg    config.QUICConfig
	rt     host.Runtime
	logger log.Log

	mu       sync.Mutex
	listener *quic.Listener
	conns    map[*quic.Conn]string
	wg       sync.WaitGroup
}

func NewServer(cfg config.QUICConfig, rt host.Runtime, logger log.Log) *Server {
	if logger == nil {
		logger = log.Provide()
	}
	return &Server{
		cfg:    cfg,
		rt:     rt,
		logger: logger.With(log.String("host", "quic")),
		conns:  make(map[*quic.Conn]string),
	}
}

// Listen binds the UDP socket. Serve calls it when it has not been called.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	tlsConfig, err := TLSConfig(s.cfg.CertFile, s.cfg.KeyFile)
	if err != nil {
		return errors.Wrap(err, "quic tls")
	}
	listener, err := quic.ListenAddr(s.cfg.Addr, tlsConfig, &quic.Config{
		MaxIdleTimeout: s.cfg.IdleTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "quic listen")
	}
	s.listener = listener
	s.logger.Info("quic host listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx ends, then closes the listener and
// every open connection and waits for their readers to return.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	defer func() {
		s.closeAll()
		s.wg.Wait()
		s.logger.Info("quic host stopped")
	}()

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "quic accept")
		}
		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}
}

// Sessions returns the number of open connections.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleConn(ctx context.Context, conn *quic.Conn) {
	defer s.wg.Done()

	id := uuid.NewString()
	logger := s.logger.With(
		log.String("session_id", id),
		log.String("remote_addr", conn.RemoteAddr().String()))

	s.mu.Lock()
	s.conns[conn] = id
	s.mu.Unlock()
	logger.Info("session opened")

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.CloseWithError(0, "session closed")
		logger.Info("session closed")
	}()

	var streams sync.WaitGroup
	defer streams.Wait()
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			logger.Debug("accept stream ended", log.Error(err))
			return
		}
		streams.Add(1)
		go func() {
			defer streams.Done()
			s.handleStream(stream, logger)
		}()
	}
}

// handleStream reads one message per line. Replies to rejected messages go
// back on the same stream, written only by this goroutine.
func (s *Server) handleStream(stream *quic.Stream, logger log.Log) {
	defer func() { _ = stream.Close() }()

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)
	enc := json.NewEncoder(stream)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := host.Deliver(s.rt, line); err != nil {
			logger.Warn("message dropped", log.Error(err))
			if werr := enc.Encode(reply{Type: "error", Error: err.Error()}); werr != nil {
				logger.Debug("reply failed", log.Error(werr))
				return
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("stream read ended", log.Error(err))
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.CloseWithError(0, "server shutting down")
	}
}

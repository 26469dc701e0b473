package net

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server accepts TCP connections and creates Sessions.
// New sessions are handed to the game loop via the newConns channel.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	active   atomic.Int64
	maxConns int
	newConns chan *Session
	inSize   int
	outSize  int
	writeTO  time.Duration
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, maxConns, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		maxConns: maxConns,
		newConns: make(chan *Session, 16),
		inSize:   inSize,
		outSize:  outSize,
		writeTO:  writeTimeout,
		log:      log,
		closeCh:  make(chan struct{}),
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine. Connections over the cap are
// rejected at accept time — they are never admitted to game state.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		if s.maxConns > 0 && s.active.Load() >= int64(s.maxConns) {
			s.log.Warn("connection limit reached, rejecting",
				zap.String("remote", conn.RemoteAddr().String()),
				zap.Int("max", s.maxConns),
			)
			conn.Close()
			continue
		}

		id := s.nextID.Add(1)
		s.active.Add(1)
		sess := NewSession(conn, id, s.inSize, s.outSize, s.writeTO, s.log)
		sess.onClose = func() { s.active.Add(-1) }
		sess.Start()

		s.log.Info("client connected",
			zap.Uint64("session", id),
			zap.String("remote", sess.IP),
		)

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("new-connection queue full, dropping")
			sess.Close()
		}
	}
}

// NewSessions returns the channel of newly connected sessions. Dead
// sessions are discovered by the input system polling IsClosed; the
// session's close hook keeps the active count honest.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

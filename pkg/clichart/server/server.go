package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/session"
	"github.com/cognicore/clichart/pkg/clichart/store"
)

// Config configures a Server.
type Config struct {
	// Addr is the TCP address to listen on, e.g. ":5225".
	Addr string
	// MaxConnections caps concurrent sessions. Zero means no limit.
	MaxConnections int
	// NewGenerator returns the generator for one session.
	NewGenerator func() session.ChartGenerator
	// Options are the initial options of every session.
	Options *config.Options
}

// Server runs one command session per TCP connection.
type Server struct {
	cfg Config
	log *log.Entry

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func New(cfg Config, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Server{
		cfg:   cfg,
		log:   logger,
		conns: make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes ln and every
// open connection and waits for their sessions to end. Serve takes ownership
// of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.NewGenerator == nil {
		ln.Close()
		return errors.New("server: no chart generator factory")
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	s.log.WithField("addr", ln.Addr().String()).Info("server listening")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		s.closeAll()
		return nil
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			s.track(conn)
			g.Go(func() error {
				s.handle(gctx, conn)
				return nil
			})
		}
	})

	err := g.Wait()
	s.log.Info("server stopped")
	return err
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer s.release(conn)

	logger := s.log.WithFields(log.Fields{
		"session": store.NewID(),
		"remote":  conn.RemoteAddr().String(),
	})
	logger.Info("session opened")

	// Each session owns its options; s.cfg.Options is only ever read.
	var opts *config.Options
	if s.cfg.Options != nil {
		opts = s.cfg.Options.Clone()
	}
	sess := session.New(s.cfg.NewGenerator(), session.Config{Options: opts, Logger: logger})
	err := sess.Interact(ctx, conn, conn)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Info("session closed")
	case errors.Is(err, session.ErrInactive):
		logger.Warn("session timed out")
	default:
		logger.WithError(err).Warn("session ended with error")
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) release(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foxxorcat/sockhost/common/bytespool"
	"github.com/foxxorcat/sockhost/manager/sockets"

	"go.uber.org/zap"
)

const (
	wakeTimeout    = 2 * time.Second
	wakeBackoffMin = 10 * time.Millisecond
	wakeBackoffMax = 500 * time.Millisecond
)

// Server accepts connections on one listening socket and writes every byte
// it reads back to the peer.
type Server struct {
	cfg    Config
	ln     *sockets.Socket
	addr   netip.AddrPort
	logger *zap.Logger

	// dial connects to the listener to wake a blocked Accept.
	dial func(ctx context.Context, network, address string) (net.Conn, error)

	closing    atomic.Bool
	served     chan struct{}
	servedOnce sync.Once
	conns      sync.WaitGroup
}

// Listen validates cfg and returns a Server whose socket is already
// listening. A nil logger disables logging.
func Listen(cfg Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ln, err := sockets.New()
	if err != nil {
		return nil, err
	}
	if err := ln.Bind(cfg.Address, cfg.Port); err != nil {
		ln.Close()
		return nil, err
	}
	if err := ln.Listen(cfg.Backlog); err != nil {
		ln.Close()
		return nil, err
	}
	addr, err := ln.LocalAddr()
	if err != nil {
		ln.Close()
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		ln:     ln,
		addr:   addr,
		logger: logger,
		dial:   (&net.Dialer{Timeout: wakeTimeout}).DialContext,
		served: make(chan struct{}),
	}, nil
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() netip.AddrPort {
	return s.addr
}

// Serve runs the accept loop until Shutdown is called or ctx is done. The
// listener is closed before Serve returns. Connections already accepted keep
// running until their peer hangs up; use Wait to block on them. Serve must
// be called at most once.
func (s *Server) Serve(ctx context.Context) error {
	watched := make(chan struct{})
	defer func() { <-watched }()
	defer s.servedOnce.Do(func() { close(s.served) })
	defer s.ln.Close()

	go func() {
		defer close(watched)
		select {
		case <-ctx.Done():
			s.Shutdown(context.Background())
		case <-s.served:
		}
	}()

	s.logger.Info("echo server listening", zap.Stringer("addr", s.addr))
	for {
		conn, err := s.ln.Accept()
		if s.closing.Load() {
			if conn != nil {
				conn.Close()
			}
			s.logger.Info("echo server stopped", zap.Stringer("addr", s.addr))
			return nil
		}
		if err != nil {
			return fmt.Errorf("accept on %s: %w", s.addr, err)
		}

		s.conns.Add(1)
		go s.handle(conn)
	}
}

// Shutdown stops the accept loop and waits for Serve to return. Accept has
// no timeout, so the blocked call is woken by connecting to the listener,
// retrying with backoff until Serve is gone or ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)
	addr := s.wakeAddr().String()
	backoff := wakeBackoffMin
	for {
		select {
		case <-s.served:
			return nil
		default:
		}

		conn, err := s.dial(ctx, "tcp", addr)
		if err != nil {
			s.logger.Warn("waking accept loop", zap.String("addr", addr), zap.Error(err))
		} else {
			conn.Close()
		}

		timer := time.NewTimer(backoff)
		select {
		case <-s.served:
			timer.Stop()
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, wakeBackoffMax)
	}
}

// Wait blocks until every accepted connection has finished.
func (s *Server) Wait() {
	s.conns.Wait()
}

func (s *Server) wakeAddr() netip.AddrPort {
	if s.addr.Addr().IsUnspecified() {
		return netip.AddrPortFrom(netip.AddrFrom4([4]byte{127, 0, 0, 1}), s.addr.Port())
	}
	return s.addr
}

func (s *Server) handle(conn *sockets.Socket) {
	defer s.conns.Done()
	defer conn.Close()

	log := s.logger.With(zap.Int("fd", conn.Fd()))
	log.Debug("connection accepted")

	buf := bytespool.Alloc(s.cfg.BufferSize)
	defer bytespool.Free(buf)

	var total int64
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				log.Debug("write failed", zap.Error(werr))
				return
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			log.Debug("connection closed by peer", zap.Int64("bytes", total))
			return
		}
		if err != nil {
			log.Debug("read failed", zap.Error(err))
			return
		}
	}
}

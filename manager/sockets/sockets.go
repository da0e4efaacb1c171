// Package sockets implements a blocking IPv4 TCP socket handle on top of the
// raw socket syscalls.
//
// A Socket owns exactly one descriptor and moves through
// Created → Bound → Listening, with Connected reserved for handles returned
// by Accept. Operations issued in the wrong state fail with ErrInvalidState
// before reaching the OS. Close releases the descriptor exactly once; handles
// that are dropped without Close are released by a runtime cleanup.
package sockets

import (
	"io"
	"net/netip"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// State is the lifecycle state of a Socket.
type State uint32

const (
	StateCreated State = iota
	StateBound
	StateListening
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBound:
		return "bound"
	case StateListening:
		return "listening"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// descriptor is shared by a Socket and its cleanup so the fd can be closed
// after the Socket itself became unreachable.
type descriptor struct {
	fd        int
	sys       sysLayer
	closeOnce sync.Once
}

// release closes the fd. Only the first call reaches the OS; it reports
// whether it did so.
func (d *descriptor) release() (closed bool, err error) {
	d.closeOnce.Do(func() {
		closed = true
		err = d.sys.close(d.fd)
	})
	return closed, err
}

func releaseDropped(d *descriptor) {
	if closed, err := d.release(); closed {
		Logger().Debug("socket released by cleanup", zap.Int("fd", d.fd), zap.Error(err))
	}
}

// Socket is an IPv4 stream socket. Its methods are not safe for concurrent
// use, except Close, which may be called any number of times from any
// goroutine.
type Socket struct {
	d       *descriptor
	state   atomic.Uint32
	cleanup runtime.Cleanup
}

// New creates an unbound socket in StateCreated.
func New() (*Socket, error) {
	return newSocket(defaultSys)
}

func newSocket(sys sysLayer) (*Socket, error) {
	fd, err := sys.socket()
	if err != nil || fd < 0 {
		return nil, &OpError{Op: "socket", Kind: ErrSocketCreation, Err: err}
	}
	s := wrap(sys, fd, StateCreated)
	Logger().Debug("socket created", zap.Int("fd", fd))
	return s, nil
}

func wrap(sys sysLayer, fd int, st State) *Socket {
	d := &descriptor{fd: fd, sys: sys}
	s := &Socket{d: d}
	s.state.Store(uint32(st))
	s.cleanup = runtime.AddCleanup(s, releaseDropped, d)
	return s
}

// State returns the current lifecycle state.
func (s *Socket) State() State {
	return State(s.state.Load())
}

// Fd returns the underlying descriptor, or -1 once the socket is closed.
func (s *Socket) Fd() int {
	if s.State() == StateClosed {
		return -1
	}
	return s.d.fd
}

// Bind parses address as a dotted-decimal IPv4 literal and binds the socket
// to it. Port 0 lets the OS pick an ephemeral port.
func (s *Socket) Bind(address string, port uint16) error {
	if st := s.State(); st != StateCreated {
		return stateError("bind", st)
	}
	ip, err := ParseIPv4(address)
	if err != nil {
		return err
	}
	return s.BindIPv4(ip, port)
}

// BindIPv4 is Bind with an already parsed address.
func (s *Socket) BindIPv4(ip IPv4, port uint16) error {
	if st := s.State(); st != StateCreated {
		return stateError("bind", st)
	}
	addr := netip.AddrPortFrom(ip.Addr(), port).String()
	err := s.d.sys.bind(s.d.fd, ip, port)
	runtime.KeepAlive(s)
	if err != nil {
		return &OpError{Op: "bind", Kind: ErrBind, State: StateCreated, Addr: addr, Err: err}
	}
	if !s.state.CompareAndSwap(uint32(StateCreated), uint32(StateBound)) {
		return stateError("bind", s.State())
	}
	Logger().Debug("socket bound", zap.Int("fd", s.d.fd), zap.String("addr", addr))
	return nil
}

// Listen marks a bound socket as passive. backlog caps the number of
// established connections waiting for Accept.
func (s *Socket) Listen(backlog int) error {
	if st := s.State(); st != StateBound {
		return stateError("listen", st)
	}
	err := s.d.sys.listen(s.d.fd, backlog)
	runtime.KeepAlive(s)
	if err != nil {
		return &OpError{Op: "listen", Kind: ErrListen, State: StateBound, Err: err}
	}
	if !s.state.CompareAndSwap(uint32(StateBound), uint32(StateListening)) {
		return stateError("listen", s.State())
	}
	Logger().Debug("socket listening", zap.Int("fd", s.d.fd), zap.Int("backlog", backlog))
	return nil
}

// Accept blocks until a peer connects and returns a new socket in
// StateConnected that owns the peer's descriptor. The listening socket is
// left as it was.
func (s *Socket) Accept() (*Socket, error) {
	if st := s.State(); st != StateListening {
		return nil, stateError("accept", st)
	}
	nfd, err := s.d.sys.accept(s.d.fd)
	runtime.KeepAlive(s)
	if err != nil || nfd < 0 {
		return nil, &OpError{Op: "accept", Kind: ErrAccept, State: StateListening, Err: err}
	}
	conn := wrap(s.d.sys, nfd, StateConnected)
	if st := s.State(); st != StateListening {
		conn.Close()
		return nil, stateError("accept", st)
	}
	Logger().Debug("socket accepted", zap.Int("fd", s.d.fd), zap.Int("conn_fd", nfd))
	return conn, nil
}

// Read reads from a connected socket. It returns io.EOF once the peer has
// shut down its side.
func (s *Socket) Read(p []byte) (int, error) {
	if st := s.State(); st != StateConnected {
		return 0, stateError("read", st)
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := s.d.sys.read(s.d.fd, p)
	runtime.KeepAlive(s)
	if err != nil {
		return 0, &OpError{Op: "read", Kind: ErrRead, State: StateConnected, Err: err}
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes all of p to a connected socket, continuing after short
// writes.
func (s *Socket) Write(p []byte) (int, error) {
	if st := s.State(); st != StateConnected {
		return 0, stateError("write", st)
	}
	written := 0
	for written < len(p) {
		n, err := s.d.sys.write(s.d.fd, p[written:])
		if err == nil && n == 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			runtime.KeepAlive(s)
			return written, &OpError{Op: "write", Kind: ErrWrite, State: StateConnected, Err: err}
		}
		written += n
	}
	runtime.KeepAlive(s)
	return written, nil
}

// LocalAddr reports the address the socket is bound to, including the port
// the OS picked when binding to port 0.
func (s *Socket) LocalAddr() (netip.AddrPort, error) {
	st := s.State()
	if st == StateCreated || st == StateClosed {
		return netip.AddrPort{}, stateError("getsockname", st)
	}
	ip, port, err := s.d.sys.getsockname(s.d.fd)
	runtime.KeepAlive(s)
	if err != nil {
		return netip.AddrPort{}, &OpError{Op: "getsockname", Kind: ErrLocalAddr, State: st, Err: err}
	}
	return netip.AddrPortFrom(ip.Addr(), port), nil
}

// Close releases the descriptor. Only the first call reaches the OS; later
// calls return nil. Every other method fails with ErrInvalidState afterwards.
func (s *Socket) Close() error {
	s.state.Store(uint32(StateClosed))
	s.cleanup.Stop()
	closed, err := s.d.release()
	if !closed {
		return nil
	}
	Logger().Debug("socket released", zap.Int("fd", s.d.fd), zap.Error(err))
	if err != nil {
		return &OpError{Op: "close", Kind: ErrClose, State: StateClosed, Err: err}
	}
	return nil
}

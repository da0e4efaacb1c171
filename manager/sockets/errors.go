package sockets

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Socket wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrSocketCreation = errors.New("socket creation failed")
	ErrAddressParse   = errors.New("invalid IPv4 address")
	ErrInvalidState   = errors.New("invalid socket state")
	ErrBind           = errors.New("bind failed")
	ErrListen         = errors.New("listen failed")
	ErrAccept         = errors.New("accept failed")
	ErrRead           = errors.New("read failed")
	ErrWrite          = errors.New("write failed")
	ErrLocalAddr      = errors.New("local address unavailable")
	ErrClose          = errors.New("close failed")
)

// OpError describes a failed socket operation.
type OpError struct {
	Op    string // "socket", "bind", "listen", "accept", "read", "write", "getsockname", "close"
	Kind  error  // one of the Err* kinds above
	State State  // state of the socket when the operation was attempted
	Addr  string // address involved, if any
	Err   error  // underlying OS error, may be nil
}

func (e *OpError) Error() string {
	s := e.Op
	if e.Addr != "" {
		s += " " + e.Addr
	}
	s += ": " + e.Kind.Error()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	} else if errors.Is(e.Kind, ErrInvalidState) {
		s += fmt.Sprintf(" (socket is %s)", e.State)
	}
	return s
}

// Unwrap exposes both the kind and the OS error, so errors.Is matches
// ErrBind as well as unix.EADDRINUSE on the same value.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stateError(op string, st State) error {
	return &OpError{Op: op, Kind: ErrInvalidState, State: st}
}

package tcp

import (
	"errors"
	"syscall"

	"github.com/foxxorcat/sockhost/manager/resource"
	"github.com/foxxorcat/sockhost/manager/sockets"
)

// mapError translates a host-side error into the code handed to the guest.
// The error kind decides first, the OS errno refines it.
func mapError(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}
	switch {
	case errors.Is(err, resource.ErrUnknownHandle):
		return ErrorCodeInvalidArgument
	case errors.Is(err, resource.ErrReleased), errors.Is(err, sockets.ErrInvalidState):
		return ErrorCodeInvalidState
	case errors.Is(err, errors.ErrUnsupported):
		return ErrorCodeNotSupported
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			return ErrorCodeAccessDenied
		case syscall.EADDRINUSE:
			return ErrorCodeAddressInUse
		case syscall.EADDRNOTAVAIL:
			return ErrorCodeAddressNotBindable
		case syscall.ENFILE, syscall.EMFILE:
			return ErrorCodeNewSocketLimit
		case syscall.ECONNABORTED:
			return ErrorCodeConnectionAborted
		case syscall.EAFNOSUPPORT, syscall.EOPNOTSUPP:
			return ErrorCodeNotSupported
		case syscall.EINVAL:
			return ErrorCodeInvalidArgument
		}
	}
	return ErrorCodeUnknown
}

func toSocketState(st sockets.State) SocketState {
	switch st {
	case sockets.StateCreated:
		return SocketStateCreated
	case sockets.StateBound:
		return SocketStateBound
	case sockets.StateListening:
		return SocketStateListening
	case sockets.StateConnected:
		return SocketStateConnected
	default:
		return SocketStateClosed
	}
}

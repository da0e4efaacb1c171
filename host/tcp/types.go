package tcp

// ErrorCode is the status returned to guests. Zero means success.
type ErrorCode uint32

const (
	ErrorCodeNone ErrorCode = iota
	ErrorCodeUnknown
	ErrorCodeAccessDenied
	ErrorCodeInvalidArgument
	ErrorCodeInvalidState
	ErrorCodeNewSocketLimit
	ErrorCodeAddressNotBindable
	ErrorCodeAddressInUse
	ErrorCodeConnectionAborted
	ErrorCodeNotSupported
)

// SocketState mirrors sockets.State on the guest side.
type SocketState uint32

const (
	SocketStateCreated SocketState = iota
	SocketStateBound
	SocketStateListening
	SocketStateConnected
	SocketStateClosed
)

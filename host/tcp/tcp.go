// Package tcp exports the socket lifecycle to guests as the "sockhost:tcp"
// host module.
//
// Every function returns an ErrorCode as its last result. Addresses are
// IPv4 packed big-endian into an i32, so 127.0.0.1 is 0x7f000001.
package tcp

import (
	"context"
	"math"

	"github.com/foxxorcat/sockhost/host"
	"github.com/foxxorcat/sockhost/manager/sockets"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
)

// ModuleName is the import module guests link against.
const ModuleName = "sockhost:tcp"

// Version is the only exported version of the module.
const Version = "0.1.0"

// Module returns an option that registers the sockhost:tcp module.
func Module() host.ModuleOption {
	return func(h *host.Host) {
		h.AddImplementation(&tcpModule{})
	}
}

type tcpModule struct{}

func (*tcpModule) Name() string       { return ModuleName }
func (*tcpModule) Versions() []string { return []string{Version} }

func (*tcpModule) Instantiate(_ context.Context, h *host.Host, b wazero.HostModuleBuilder) error {
	impl := newTCPImpl(h)

	b.NewFunctionBuilder().WithFunc(impl.CreateSocket).
		WithResultNames("handle", "error").
		Export("create-socket")
	b.NewFunctionBuilder().WithFunc(impl.Bind).
		WithParameterNames("self", "address", "port").
		Export("[method]socket.bind")
	b.NewFunctionBuilder().WithFunc(impl.Listen).
		WithParameterNames("self", "backlog").
		Export("[method]socket.listen")
	b.NewFunctionBuilder().WithFunc(impl.Accept).
		WithParameterNames("self").
		WithResultNames("handle", "error").
		Export("[method]socket.accept")
	b.NewFunctionBuilder().WithFunc(impl.State).
		WithParameterNames("self").
		WithResultNames("state", "error").
		Export("[method]socket.state")
	b.NewFunctionBuilder().WithFunc(impl.LocalPort).
		WithParameterNames("self").
		WithResultNames("port", "error").
		Export("[method]socket.local-port")
	b.NewFunctionBuilder().WithFunc(impl.DropSocket).
		WithParameterNames("self").
		Export("[resource-drop]socket")
	return nil
}

type tcpImpl struct {
	host *host.Host
}

func newTCPImpl(h *host.Host) *tcpImpl {
	return &tcpImpl{host: h}
}

func (i *tcpImpl) code(op string, handle uint32, err error) uint32 {
	c := mapError(err)
	if c != ErrorCodeNone {
		i.host.Logger().Debug("guest socket call failed",
			zap.String("op", op),
			zap.Uint32("handle", handle),
			zap.Uint32("code", uint32(c)),
			zap.Error(err))
	}
	return uint32(c)
}

func (i *tcpImpl) CreateSocket(_ context.Context) (uint32, uint32) {
	s, err := sockets.New()
	if err != nil {
		return 0, i.code("create-socket", 0, err)
	}
	return i.host.SocketManager().Add(s), uint32(ErrorCodeNone)
}

func (i *tcpImpl) Bind(_ context.Context, this, address, port uint32) uint32 {
	sock, err := i.host.SocketManager().Get(this)
	if err != nil {
		return i.code("bind", this, err)
	}
	if port > math.MaxUint16 {
		return uint32(ErrorCodeInvalidArgument)
	}
	return i.code("bind", this, sock.BindIPv4(sockets.IPv4FromUint32(address), uint16(port)))
}

func (i *tcpImpl) Listen(_ context.Context, this, backlog uint32) uint32 {
	sock, err := i.host.SocketManager().Get(this)
	if err != nil {
		return i.code("listen", this, err)
	}
	return i.code("listen", this, sock.Listen(int(min(backlog, math.MaxInt32))))
}

// Accept blocks the calling guest until a peer connects.
func (i *tcpImpl) Accept(_ context.Context, this uint32) (uint32, uint32) {
	sock, err := i.host.SocketManager().Get(this)
	if err != nil {
		return 0, i.code("accept", this, err)
	}
	conn, err := sock.Accept()
	if err != nil {
		return 0, i.code("accept", this, err)
	}
	return i.host.SocketManager().Add(conn), uint32(ErrorCodeNone)
}

func (i *tcpImpl) State(_ context.Context, this uint32) (uint32, uint32) {
	sock, err := i.host.SocketManager().Get(this)
	if err != nil {
		return uint32(SocketStateClosed), i.code("state", this, err)
	}
	return uint32(toSocketState(sock.State())), uint32(ErrorCodeNone)
}

func (i *tcpImpl) LocalPort(_ context.Context, this uint32) (uint32, uint32) {
	sock, err := i.host.SocketManager().Get(this)
	if err != nil {
		return 0, i.code("local-port", this, err)
	}
	addr, err := sock.LocalAddr()
	if err != nil {
		return 0, i.code("local-port", this, err)
	}
	return uint32(addr.Port()), uint32(ErrorCodeNone)
}

// DropSocket releases the handle and the socket behind it. Dropping an
// unknown or already dropped handle is a no-op.
func (i *tcpImpl) DropSocket(_ context.Context, this uint32) {
	i.host.SocketManager().Remove(this)
}

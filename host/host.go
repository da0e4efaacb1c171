// Package host exposes host-owned sockets to WebAssembly guests running in
// a wazero runtime.
package host

import (
	"context"
	"fmt"

	"github.com/foxxorcat/sockhost/manager/resource"
	"github.com/foxxorcat/sockhost/manager/sockets"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
)

// Implementation is a group of host functions exported under one module
// name, possibly for several versions.
type Implementation interface {
	// Name returns the module name, e.g. "sockhost:tcp".
	Name() string
	// Versions returns the versions this implementation is exported as.
	Versions() []string
	// Instantiate registers the functions on the builder.
	Instantiate(context.Context, *Host, wazero.HostModuleBuilder) error
}

// Host owns every socket handed out to guests.
type Host struct {
	sockets    *resource.Manager[*sockets.Socket]
	logger     *zap.Logger
	tombstones int

	implementations []Implementation
}

// ModuleOption configures a Host.
type ModuleOption func(*Host)

// WithLogger sets the logger used for host-side diagnostics.
func WithLogger(l *zap.Logger) ModuleOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTombstones sets how many released handles are remembered so that late
// calls on them report an invalid state instead of an unknown handle.
func WithTombstones(n int) ModuleOption {
	return func(h *Host) {
		h.tombstones = n
	}
}

// NewHost creates a Host and applies the options.
func NewHost(opts ...ModuleOption) *Host {
	h := &Host{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	h.sockets = resource.NewManager(h.closeSocket, h.tombstones)
	return h
}

func (h *Host) closeSocket(s *sockets.Socket) {
	if err := s.Close(); err != nil {
		h.logger.Warn("closing guest socket", zap.Error(err))
	}
}

// AddImplementation registers impl for the next Instantiate.
func (h *Host) AddImplementation(impl Implementation) {
	h.implementations = append(h.implementations, impl)
}

// Instantiate instantiates one host module per implementation and version,
// named "<name>@<version>".
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) error {
	for _, impl := range h.implementations {
		for _, version := range impl.Versions() {
			moduleName := impl.Name() + "@" + version
			builder := r.NewHostModuleBuilder(moduleName)
			if err := impl.Instantiate(ctx, h, builder); err != nil {
				return fmt.Errorf("register %s: %w", moduleName, err)
			}
			if _, err := builder.Instantiate(ctx); err != nil {
				return fmt.Errorf("instantiate %s: %w", moduleName, err)
			}
			h.logger.Debug("host module instantiated", zap.String("module", moduleName))
		}
	}
	return nil
}

// SocketManager returns the handle table of guest sockets.
func (h *Host) SocketManager() *resource.Manager[*sockets.Socket] {
	return h.sockets
}

// Logger returns the host logger.
func (h *Host) Logger() *zap.Logger {
	return h.logger
}

// Close releases every socket still owned by guests.
func (h *Host) Close() {
	h.sockets.Close()
}

// Package echo is a small TCP echo server built directly on sockets.Socket.
package echo

import (
	"errors"
	"fmt"

	"github.com/foxxorcat/sockhost/common/bytespool"
	"github.com/foxxorcat/sockhost/manager/sockets"
)

const (
	// DefaultAddress binds every local interface.
	DefaultAddress = "0.0.0.0"

	DefaultPort       = 7000
	DefaultBacklog    = 128
	DefaultBufferSize = 4096
)

// Config holds the listener settings of a Server.
type Config struct {
	Address    string
	Port       uint16 // 0 picks an ephemeral port
	Backlog    int
	BufferSize int // per-connection read buffer
}

// Defaults returns the configuration used by sockd when no flags are given.
func Defaults() Config {
	return Config{
		Address:    DefaultAddress,
		Port:       DefaultPort,
		Backlog:    DefaultBacklog,
		BufferSize: DefaultBufferSize,
	}
}

// Validate reports the first problem with c, if any.
func (c Config) Validate() error {
	if _, err := sockets.ParseIPv4(c.Address); err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if c.Backlog < 0 {
		return errors.New("backlog must not be negative")
	}
	if c.BufferSize <= 0 || c.BufferSize > bytespool.MaxSize {
		return fmt.Errorf("buffer size must be between 1 and %d, got %d", bytespool.MaxSize, c.BufferSize)
	}
	return nil
}

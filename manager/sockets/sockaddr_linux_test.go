//go:build linux

package sockets

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestRawSockaddrInet4Layout(t *testing.T) {
	require.Equal(t, uintptr(16), unsafe.Sizeof(unix.RawSockaddrInet4{}))

	rsa := rawSockaddrInet4(IPv4{127, 0, 0, 1}, 8080)
	b := (*[unix.SizeofSockaddrInet4]byte)(unsafe.Pointer(&rsa))

	family := make([]byte, 2)
	binary.NativeEndian.PutUint16(family, unix.AF_INET)
	assert.Equal(t, family, b[0:2], "family")
	assert.Equal(t, []byte{0x1f, 0x90}, b[2:4], "port")
	assert.Equal(t, []byte{127, 0, 0, 1}, b[4:8], "address")
	assert.Equal(t, make([]byte, 8), b[8:16], "padding")
}

func TestRawSockaddrInet4EphemeralWildcard(t *testing.T) {
	rsa := rawSockaddrInet4(IPv4Any, 0)
	b := (*[unix.SizeofSockaddrInet4]byte)(unsafe.Pointer(&rsa))
	assert.Equal(t, make([]byte, 14), b[2:16])
}

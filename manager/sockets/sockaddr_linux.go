//go:build linux

package sockets

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// rawSockaddrInet4 builds the sockaddr_in record passed to bind(2).
// On Linux the family is a native-endian 16-bit field and there is no
// length byte.
func rawSockaddrInet4(ip IPv4, port uint16) unix.RawSockaddrInet4 {
	rsa := unix.RawSockaddrInet4{Family: unix.AF_INET}
	p := (*[2]byte)(unsafe.Pointer(&rsa.Port))
	p[0] = byte(port >> 8)
	p[1] = byte(port)
	rsa.Addr = ip
	return rsa
}

func bindInet4(fd int, ip IPv4, port uint16) error {
	rsa := rawSockaddrInet4(ip, port)
	_, _, errno := unix.Syscall(unix.SYS_BIND, uintptr(fd), uintptr(unsafe.Pointer(&rsa)), unix.SizeofSockaddrInet4)
	if errno != 0 {
		return errno
	}
	return nil
}

//go:build darwin

package sockets

import "golang.org/x/sys/unix"

// bindInet4 goes through libSystem, which does not allow raw syscalls.
// x/sys fills in the length byte and the 8-bit family of sockaddr_in.
func bindInet4(fd int, ip IPv4, port uint16) error {
	return unix.Bind(fd, &unix.SockaddrInet4{Port: int(port), Addr: ip})
}

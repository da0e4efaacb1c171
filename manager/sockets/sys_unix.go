//go:build linux || darwin

package sockets

import (
	"golang.org/x/sys/unix"
)

var defaultSys sysLayer = unixSys{}

type unixSys struct{}

func (unixSys) socket() (int, error) {
	// Darwin has no SOCK_CLOEXEC, so the flag is set after creation.
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

func (unixSys) bind(fd int, ip IPv4, port uint16) error {
	return bindInet4(fd, ip, port)
}

func (unixSys) listen(fd, backlog int) error {
	return unix.Listen(fd, backlog)
}

func (unixSys) accept(fd int) (int, error) {
	for {
		nfd, _, err := unix.Accept(fd)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return -1, err
		}
		unix.CloseOnExec(nfd)
		return nfd, nil
	}
}

func (unixSys) read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

func (unixSys) write(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

func (unixSys) getsockname(fd int) (IPv4, uint16, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return IPv4{}, 0, err
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return IPv4{}, 0, unix.EAFNOSUPPORT
	}
	return IPv4(sa4.Addr), uint16(sa4.Port), nil
}

func (unixSys) close(fd int) error {
	return unix.Close(fd)
}

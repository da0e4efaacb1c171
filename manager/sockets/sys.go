package sockets

// sysLayer is the raw syscall boundary. Implementations return the OS error
// unchanged; translation into OpError happens in Socket.
type sysLayer interface {
	socket() (int, error)
	bind(fd int, ip IPv4, port uint16) error
	listen(fd, backlog int) error
	accept(fd int) (int, error)
	read(fd int, p []byte) (int, error)
	write(fd int, p []byte) (int, error)
	getsockname(fd int) (IPv4, uint16, error)
	close(fd int) error
}

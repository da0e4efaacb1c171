package sockets

import (
	"sync"
)

type fakeBind struct {
	fd   int
	ip   IPv4
	port uint16
}

// fakeSys is an in-memory sysLayer that records calls and returns the
// configured errors.
type fakeSys struct {
	mu      sync.Mutex
	nextFd  int
	closes  map[int]int
	binds   []fakeBind
	backlog int

	socketErr, bindErr, listenErr, acceptErr error
	readErr, writeErr, closeErr              error

	readData   []byte
	written    []byte
	writeChunk int // max bytes per write call, 0 means unlimited
}

func newFakeSys() *fakeSys {
	return &fakeSys{nextFd: 100, closes: make(map[int]int)}
}

func (f *fakeSys) socket() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.socketErr != nil {
		return -1, f.socketErr
	}
	fd := f.nextFd
	f.nextFd++
	return fd, nil
}

func (f *fakeSys) bind(fd int, ip IPv4, port uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bindErr != nil {
		return f.bindErr
	}
	f.binds = append(f.binds, fakeBind{fd: fd, ip: ip, port: port})
	return nil
}

func (f *fakeSys) listen(_ int, backlog int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listenErr != nil {
		return f.listenErr
	}
	f.backlog = backlog
	return nil
}

func (f *fakeSys) accept(int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acceptErr != nil {
		return -1, f.acceptErr
	}
	fd := f.nextFd
	f.nextFd++
	return fd, nil
}

func (f *fakeSys) read(_ int, p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	n := copy(p, f.readData)
	f.readData = f.readData[n:]
	return n, nil
}

func (f *fakeSys) write(_ int, p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if f.writeChunk > 0 && len(p) > f.writeChunk {
		p = p[:f.writeChunk]
	}
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakeSys) getsockname(fd int) (IPv4, uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.binds {
		if b.fd == fd {
			return b.ip, b.port, nil
		}
	}
	return IPv4{}, 0, nil
}

func (f *fakeSys) close(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes[fd]++
	return f.closeErr
}

func (f *fakeSys) closeCount(fd int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes[fd]
}

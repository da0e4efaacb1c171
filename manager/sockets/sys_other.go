//go:build !linux && !darwin

package sockets

import "errors"

var defaultSys sysLayer = unsupportedSys{}

// unsupportedSys lets the package build everywhere; every call fails.
type unsupportedSys struct{}

func (unsupportedSys) socket() (int, error)                  { return -1, errors.ErrUnsupported }
func (unsupportedSys) bind(int, IPv4, uint16) error          { return errors.ErrUnsupported }
func (unsupportedSys) listen(int, int) error                 { return errors.ErrUnsupported }
func (unsupportedSys) accept(int) (int, error)               { return -1, errors.ErrUnsupported }
func (unsupportedSys) read(int, []byte) (int, error)         { return 0, errors.ErrUnsupported }
func (unsupportedSys) write(int, []byte) (int, error)        { return 0, errors.ErrUnsupported }
func (unsupportedSys) getsockname(int) (IPv4, uint16, error) { return IPv4{}, 0, errors.ErrUnsupported }
func (unsupportedSys) close(int) error                       { return errors.ErrUnsupported }

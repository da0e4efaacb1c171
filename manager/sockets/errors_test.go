package sockets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpErrorMessage(t *testing.T) {
	err := &OpError{Op: "bind", Kind: ErrBind, Addr: "127.0.0.1:80", Err: errFake}
	assert.Equal(t, "bind 127.0.0.1:80: bind failed: fake os failure", err.Error())

	err = &OpError{Op: "accept", Kind: ErrInvalidState, State: StateBound}
	assert.Equal(t, "accept: invalid socket state (socket is bound)", err.Error())
}

func TestOpErrorUnwrap(t *testing.T) {
	var err error = &OpError{Op: "listen", Kind: ErrListen, Err: errFake}
	assert.True(t, errors.Is(err, ErrListen))
	assert.True(t, errors.Is(err, errFake))
	assert.False(t, errors.Is(err, ErrBind))

	err = stateError("read", StateClosed)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, errFake))
}

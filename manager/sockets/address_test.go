package sockets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIPv4(t *testing.T) {
	tests := []struct {
		in   string
		want IPv4
	}{
		{"0.0.0.0", IPv4{0, 0, 0, 0}},
		{"127.0.0.1", IPv4{127, 0, 0, 1}},
		{"255.255.255.255", IPv4{255, 255, 255, 255}},
		{"192.168.10.200", IPv4{192, 168, 10, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIPv4(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseIPv4Rejects(t *testing.T) {
	for _, in := range []string{
		"",
		"localhost",
		"1.2.3",
		"1.2.3.4.5",
		"256.0.0.1",
		"1.2.3.-4",
		"01.2.3.4",
		" 1.2.3.4",
		"1.2.3.4:80",
		"::1",
		"::ffff:127.0.0.1",
		"1.2.3.4%eth0",
		"12x.0.0.1!",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseIPv4(in)
			require.ErrorIs(t, err, ErrAddressParse)
		})
	}
}

func TestIPv4Uint32(t *testing.T) {
	ip := IPv4{127, 0, 0, 1}
	assert.Equal(t, uint32(0x7f000001), ip.Uint32())
	assert.Equal(t, ip, IPv4FromUint32(0x7f000001))
	assert.Equal(t, IPv4Any, IPv4FromUint32(0))
}

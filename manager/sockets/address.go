package sockets

import (
	"encoding/binary"
	"net/netip"
	"strconv"
)

// IPv4 is an IPv4 address in network byte order.
type IPv4 [4]byte

// IPv4Any is the wildcard address 0.0.0.0.
var IPv4Any = IPv4{}

// ParseIPv4 parses a dotted-decimal IPv4 literal such as "127.0.0.1".
// IPv6 forms, IPv4-mapped IPv6, zones and octets with leading zeros are
// rejected.
func ParseIPv4(s string) (IPv4, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return IPv4{}, &OpError{Op: "parse", Kind: ErrAddressParse, Addr: strconv.Quote(s), Err: err}
	}
	if !addr.Is4() {
		return IPv4{}, &OpError{Op: "parse", Kind: ErrAddressParse, Addr: strconv.Quote(s)}
	}
	return IPv4(addr.As4()), nil
}

// IPv4FromUint32 unpacks an address stored as a big-endian integer,
// e.g. 0x7f000001 for 127.0.0.1.
func IPv4FromUint32(v uint32) IPv4 {
	var ip IPv4
	binary.BigEndian.PutUint32(ip[:], v)
	return ip
}

// Uint32 packs the address into a big-endian integer.
func (ip IPv4) Uint32() uint32 {
	return binary.BigEndian.Uint32(ip[:])
}

func (ip IPv4) Addr() netip.Addr {
	return netip.AddrFrom4(ip)
}

func (ip IPv4) String() string {
	return ip.Addr().String()
}

package tcpip

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// IPv4Address is an IPv4 address stored in wire order. It is comparable
// and can be used as a map key.
type IPv4Address [4]byte

// IPv4AddressFrom returns the address a.b.c.d.
func IPv4AddressFrom(a, b, c, d byte) IPv4Address {
	return IPv4Address{a, b, c, d}
}

// IPv4AddressFromNetip converts a netip.Addr. ok is false when addr is not
// an IPv4 (or IPv4-mapped IPv6) address.
func IPv4AddressFromNetip(addr netip.Addr) (ip IPv4Address, ok bool) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return IPv4Address{}, false
	}
	return IPv4Address(addr.As4()), true
}

// ParseIPv4Address parses a dotted-quad address.
func ParseIPv4Address(s string) (IPv4Address, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return IPv4Address{}, fmt.Errorf("tcpip: parse address %q: %w", s, err)
	}
	if !addr.Is4() {
		return IPv4Address{}, fmt.Errorf("tcpip: %q is not an IPv4 address", s)
	}
	return IPv4Address(addr.As4()), nil
}

// MustParseIPv4Address is like ParseIPv4Address but panics on error.
func MustParseIPv4Address(s string) IPv4Address {
	ip, err := ParseIPv4Address(s)
	if err != nil {
		panic(err)
	}
	return ip
}

// Netip returns ip as a netip.Addr.
func (ip IPv4Address) Netip() netip.Addr { return netip.AddrFrom4(ip) }

// IsZero reports whether ip is 0.0.0.0.
func (ip IPv4Address) IsZero() bool { return ip == IPv4Address{} }

func (ip IPv4Address) String() string {
	b := make([]byte, 0, 15)
	for i, v := range ip {
		if i > 0 {
			b = append(b, '.')
		}
		b = strconv.AppendUint(b, uint64(v), 10)
	}
	return string(b)
}

// MarshalText implements encoding.TextMarshaler.
func (ip IPv4Address) MarshalText() ([]byte, error) {
	return []byte(ip.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ip *IPv4Address) UnmarshalText(text []byte) error {
	v, err := ParseIPv4Address(string(text))
	if err != nil {
		return err
	}
	*ip = v
	return nil
}

// IPv4EndPoint is an address and a host-order port.
type IPv4EndPoint struct {
	Address IPv4Address
	Port    uint16
}

// EndPoint returns the endpoint addr:port.
func EndPoint(addr IPv4Address, port uint16) IPv4EndPoint {
	return IPv4EndPoint{Address: addr, Port: port}
}

// ParseIPv4EndPoint parses "a.b.c.d:port".
func ParseIPv4EndPoint(s string) (IPv4EndPoint, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return IPv4EndPoint{}, fmt.Errorf("tcpip: parse endpoint %q: %w", s, err)
	}
	if !ap.Addr().Is4() {
		return IPv4EndPoint{}, fmt.Errorf("tcpip: %q is not an IPv4 endpoint", s)
	}
	return IPv4EndPoint{Address: IPv4Address(ap.Addr().As4()), Port: ap.Port()}, nil
}

// MustParseIPv4EndPoint is like ParseIPv4EndPoint but panics on error.
func MustParseIPv4EndPoint(s string) IPv4EndPoint {
	ep, err := ParseIPv4EndPoint(s)
	if err != nil {
		panic(err)
	}
	return ep
}

// AddrPort returns ep as a netip.AddrPort.
func (ep IPv4EndPoint) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(ep.Address.Netip(), ep.Port)
}

func (ep IPv4EndPoint) String() string {
	return ep.Address.String() + ":" + strconv.Itoa(int(ep.Port))
}

// MarshalText implements encoding.TextMarshaler.
func (ep IPv4EndPoint) MarshalText() ([]byte, error) {
	return []byte(ep.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ep *IPv4EndPoint) UnmarshalText(text []byte) error {
	v, err := ParseIPv4EndPoint(string(text))
	if err != nil {
		return err
	}
	*ep = v
	return nil
}

// Quaternion identifies one direction of a transport connection by its
// source and destination endpoints.
type Quaternion struct {
	Source      IPv4EndPoint
	Destination IPv4EndPoint
}

// NewQuaternion returns the four-tuple src -> dst.
func NewQuaternion(src, dst IPv4EndPoint) Quaternion {
	return Quaternion{Source: src, Destination: dst}
}

// Reverse returns the four-tuple of the opposite direction.
// q.Reverse().Reverse() == q always holds.
func (q Quaternion) Reverse() Quaternion {
	return Quaternion{Source: q.Destination, Destination: q.Source}
}

func (q Quaternion) String() string {
	return q.Source.String() + " " + q.Destination.String()
}

// ParseQuaternion parses the String form "a.b.c.d:port a.b.c.d:port".
func ParseQuaternion(s string) (Quaternion, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Quaternion{}, fmt.Errorf("tcpip: parse flow %q: want \"src dst\"", s)
	}
	src, err := ParseIPv4EndPoint(fields[0])
	if err != nil {
		return Quaternion{}, err
	}
	dst, err := ParseIPv4EndPoint(fields[1])
	if err != nil {
		return Quaternion{}, err
	}
	return NewQuaternion(src, dst), nil
}

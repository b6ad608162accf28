// Package tcpip builds and validates IPv4, UDP and pseudo-header wire
// formats and defines the address value types used as connection keys.
//
// Headers are fixed-size byte arrays. Every multi-byte field is read and
// written with explicit big-endian offsets, so nothing depends on host
// memory layout.
package tcpip

import "encoding/binary"

// HostToNetwork16 converts a host-order value to network (big-endian) order.
// It swaps bytes on little-endian hosts and is the identity on big-endian ones.
func HostToNetwork16(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.NativeEndian.Uint16(b[:])
}

// NetworkToHost16 converts a network-order value back to host order.
func NetworkToHost16(v uint16) uint16 {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], v)
	return binary.BigEndian.Uint16(b[:])
}

func put16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

func get16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

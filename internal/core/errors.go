// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors. Callers wrap them with fmt.Errorf("...: %w") and test
// with errors.Is.
var (
	// Packet decoding errors
	ErrPacketTooShort   = errors.New("pktcraft: packet too short")
	ErrUnsupportedProto = errors.New("pktcraft: unsupported protocol")
	ErrBadChecksum      = errors.New("pktcraft: bad checksum")
	ErrFragmented       = errors.New("pktcraft: fragmented datagram")

	// Packet building errors
	ErrPayloadTooLarge = errors.New("pktcraft: payload too large")

	// Capture file errors
	ErrLinkType = errors.New("pktcraft: unsupported link type")

	// Configuration errors
	ErrConfigInvalid = errors.New("pktcraft: invalid configuration")
	ErrPlanInvalid   = errors.New("pktcraft: invalid packet plan")
)

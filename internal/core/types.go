// Package core defines the packet types shared by the builder, decoder and
// pcap sink/source.
package core

import (
	"time"

	"firestige.xyz/pktcraft/pkg/tcpip"
)

// RawPacket is one frame read from a capture file.
type RawPacket struct {
	Data       []byte    // Raw IPv4 datagram
	Timestamp  time.Time // Capture timestamp
	CaptureLen uint32    // Actual captured length
	OrigLen    uint32    // Original frame length
}

// DecodedPacket is the result of L3-L4 decoding.
type DecodedPacket struct {
	Timestamp  time.Time
	IP         IPHeader
	Transport  TransportHeader
	Payload    []byte // Transport payload, zero-copy slice
	CaptureLen uint32
	OrigLen    uint32
}

// Flow returns the four-tuple of the packet in its direction of travel.
func (p *DecodedPacket) Flow() tcpip.Quaternion {
	return tcpip.NewQuaternion(
		tcpip.EndPoint(p.IP.SrcIP, p.Transport.SrcPort),
		tcpip.EndPoint(p.IP.DstIP, p.Transport.DstPort),
	)
}

// IPHeader represents the decoded fields of an IPv4 header.
type IPHeader struct {
	Version  uint8
	SrcIP    tcpip.IPv4Address
	DstIP    tcpip.IPv4Address
	Protocol tcpip.Protocol // TCP=6, UDP=17
	TTL      uint8
	TotalLen uint16
	ID       uint16
	Flags    tcpip.IPFlags
	Checksum uint16
}

// TransportHeader represents the L4 ports. Length and Checksum are only
// populated for UDP.
type TransportHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Protocol tcpip.Protocol // Redundant storage for convenience
	Length   uint16
	Checksum uint16
}

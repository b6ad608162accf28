package decoder

import (
	"encoding/binary"

	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

const tcpHeaderMinLen = 20

// decodeTransport decodes transport layer header (TCP/UDP).
// Returns TransportHeader and remaining payload.
func decodeTransport(ip core.IPHeader, data []byte, verify bool) (core.TransportHeader, []byte, error) {
	switch ip.Protocol {
	case tcpip.ProtocolTCP:
		return decodeTCP(data)
	case tcpip.ProtocolUDP:
		return decodeUDP(ip, data, verify)
	default:
		// Unsupported transport protocol (e.g., SCTP, ICMP)
		return core.TransportHeader{Protocol: ip.Protocol}, data, nil
	}
}

// decodeUDP decodes UDP header and verifies the pseudo-header checksum.
func decodeUDP(ip core.IPHeader, data []byte, verify bool) (core.TransportHeader, []byte, error) {
	if len(data) < tcpip.UDPHeaderLen {
		return core.TransportHeader{}, nil, core.ErrPacketTooShort
	}

	h := tcpip.UDPHeaderFrom(data)
	transport := core.TransportHeader{
		Protocol: tcpip.ProtocolUDP,
		SrcPort:  h.SourcePort(),
		DstPort:  h.DestinationPort(),
		Length:   h.Length(),
		Checksum: h.Checksum(),
	}

	length := int(transport.Length)
	if length < tcpip.UDPHeaderLen || length > len(data) {
		return transport, nil, core.ErrPacketTooShort
	}
	segment := data[:length]

	if verify && !tcpip.VerifyUDP(ip.SrcIP, ip.DstIP, segment) {
		return transport, nil, core.ErrBadChecksum
	}
	return transport, tcpip.UDPPayload(segment), nil
}

// decodeTCP decodes the ports of a TCP header.
func decodeTCP(data []byte) (core.TransportHeader, []byte, error) {
	if len(data) < tcpHeaderMinLen {
		return core.TransportHeader{}, nil, core.ErrPacketTooShort
	}

	transport := core.TransportHeader{
		Protocol: tcpip.ProtocolTCP,
		SrcPort:  binary.BigEndian.Uint16(data[0:2]),
		DstPort:  binary.BigEndian.Uint16(data[2:4]),
	}

	// Data Offset (4 bits at offset 12, upper 4 bits) in 32-bit words
	headerLen := int(data[12]>>4) * 4
	if headerLen < tcpHeaderMinLen || len(data) < headerLen {
		return transport, nil, core.ErrPacketTooShort
	}
	return transport, data[headerLen:], nil
}

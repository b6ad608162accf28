package tcpip

// UDPHeaderLen is the size of a UDP header.
const UDPHeaderLen = 8

// UDPHeader is a UDP header in wire format (RFC 768).
//
//	[0:2) source port
//	[2:4) destination port
//	[4:6) length (header + payload)
//	[6:8) checksum
type UDPHeader [UDPHeaderLen]byte

// Set stamps a checksummed UDP header over the first 8 bytes of
// headerAndData, treating the remaining bytes as payload, and stores a
// copy in h. It panics if headerAndData is shorter than 8 bytes. A length
// that does not fit in 16 bits is truncated.
func (h *UDPHeader) Set(srcAddr IPv4Address, srcPort uint16, dstAddr IPv4Address, dstPort uint16, headerAndData []byte) {
	_ = headerAndData[UDPHeaderLen-1]
	length := uint16(len(headerAndData))
	put16(headerAndData[0:2], srcPort)
	put16(headerAndData[2:4], dstPort)
	put16(headerAndData[4:6], length)
	put16(headerAndData[6:8], 0)

	ph := NewPseudoHeader(srcAddr, dstAddr, ProtocolUDP, length)
	put16(headerAndData[6:8], neverZero(ph.TransportChecksum(headerAndData)))
	copy(h[:], headerAndData[:UDPHeaderLen])
}

// SetUDP stamps the header for the flow q over headerAndData and returns it.
func SetUDP(q Quaternion, headerAndData []byte) UDPHeader {
	var h UDPHeader
	h.Set(q.Source.Address, q.Source.Port, q.Destination.Address, q.Destination.Port, headerAndData)
	return h
}

// UDPHeaderFrom copies the header out of the first 8 bytes of buf.
func UDPHeaderFrom(buf []byte) UDPHeader {
	return UDPHeader(buf[:UDPHeaderLen])
}

func (h *UDPHeader) SourcePort() uint16      { return get16(h[0:2]) }
func (h *UDPHeader) DestinationPort() uint16 { return get16(h[2:4]) }

// Length is the stored total length, header included.
func (h *UDPHeader) Length() uint16 { return get16(h[4:6]) }

func (h *UDPHeader) Checksum() uint16 { return get16(h[6:8]) }

// PayloadLength is Length minus the header size.
func (h *UDPHeader) PayloadLength() uint16 { return h.Length() - UDPHeaderLen }

// UDPPayload returns the bytes following the UDP header in buf.
func UDPPayload(buf []byte) []byte { return buf[UDPHeaderLen:] }

// UDPAllLength returns the datagram length for a payload of n bytes.
func UDPAllLength(n uint16) uint16 { return n + UDPHeaderLen }

// VerifyUDP reports whether the checksum of a received UDP segment is
// valid for the given addresses. A zero checksum means the sender did not
// compute one and is accepted.
func VerifyUDP(src, dst IPv4Address, segment []byte) bool {
	if len(segment) < UDPHeaderLen {
		return false
	}
	if get16(segment[6:8]) == 0 {
		return true
	}
	ph := NewPseudoHeader(src, dst, ProtocolUDP, uint16(len(segment)))
	return ph.TransportChecksum(segment) == 0
}

package tcpip

// PseudoHeaderLen is the size of the IPv4 pseudo-header.
const PseudoHeaderLen = 12

// PseudoHeader is the IPv4 pseudo-header folded into TCP and UDP
// checksums (RFC 768, RFC 793). It is never transmitted.
//
//	[0:4)   source address
//	[4:8)   destination address
//	[8]     zero
//	[9]     protocol
//	[10:12) transport length (header + payload)
type PseudoHeader [PseudoHeaderLen]byte

// NewPseudoHeader encodes a pseudo-header. length is the transport
// header plus payload length and excludes the pseudo-header itself.
func NewPseudoHeader(src, dst IPv4Address, proto Protocol, length uint16) PseudoHeader {
	var ph PseudoHeader
	copy(ph[0:4], src[:])
	copy(ph[4:8], dst[:])
	ph[9] = byte(proto)
	put16(ph[10:12], length)
	return ph
}

func (ph *PseudoHeader) Source() IPv4Address      { return IPv4Address(ph[0:4]) }
func (ph *PseudoHeader) Destination() IPv4Address { return IPv4Address(ph[4:8]) }
func (ph *PseudoHeader) Protocol() Protocol       { return Protocol(ph[9]) }
func (ph *PseudoHeader) Length() uint16           { return get16(ph[10:12]) }

// TransportChecksum returns the checksum of the pseudo-header followed by
// segment. The checksum field inside segment must already be zero.
func (ph *PseudoHeader) TransportChecksum(segment []byte) uint16 {
	var c Checksummer
	c.Write(ph[:])
	c.Write(segment)
	return c.Sum16()
}

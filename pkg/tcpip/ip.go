package tcpip

import "fmt"

const (
	// IPHeaderLen is the size of an IPv4 header without options.
	IPHeaderLen = 20
	// DefaultTTL is the TTL stamped by IPHeader.Set.
	DefaultTTL = 128

	versionIHL = 4<<4 | IPHeaderLen/4
)

// IPFlags holds the 3 flag bits and 13-bit fragment offset of an IPv4
// header as they appear on the wire.
type IPFlags uint16

const (
	IPFlagDontFragment  IPFlags = 0x4000
	IPFlagMoreFragments IPFlags = 0x2000

	ipFragmentOffsetMask = 0x1fff
)

// DontFragment reports whether the DF bit is set.
func (f IPFlags) DontFragment() bool { return f&IPFlagDontFragment != 0 }

// MoreFragments reports whether the MF bit is set.
func (f IPFlags) MoreFragments() bool { return f&IPFlagMoreFragments != 0 }

// FragmentOffset returns the fragment offset in 8-byte units.
func (f IPFlags) FragmentOffset() uint16 { return uint16(f) & ipFragmentOffsetMask }

// IPData is the per-packet addressing input of IPHeader.Set.
type IPData struct {
	Source      IPv4Address
	Destination IPv4Address
	Protocol    Protocol
}

// IPHeader is an IPv4 header without options (RFC 791).
//
//	[0]     version | IHL
//	[1]     type of service
//	[2:4)   total length
//	[4:6)   identification
//	[6:8)   flags | fragment offset
//	[8]     TTL
//	[9]     protocol
//	[10:12) header checksum
//	[12:16) source address
//	[16:20) destination address
//
// The header does not track which fields changed. After any setter call
// the header is only valid once UpdateChecksum has run.
type IPHeader [IPHeaderLen]byte

// Set builds a complete header for a payload of payloadLength bytes:
// version 4, IHL 5, DF set, TTL 128 and an identification taken from ids.
// A nil ids uses DefaultIdentifiers.
func (h *IPHeader) Set(data IPData, payloadLength uint16, ids IdentifierSource) {
	if ids == nil {
		ids = DefaultIdentifiers
	}
	*h = IPHeader{}
	h[0] = versionIHL
	put16(h[2:4], IPAllLength(payloadLength))
	put16(h[4:6], ids.Next())
	put16(h[6:8], uint16(IPFlagDontFragment))
	h[8] = DefaultTTL
	h[9] = byte(data.Protocol)
	copy(h[12:16], data.Source[:])
	copy(h[16:20], data.Destination[:])
	h.UpdateChecksum()
}

// Restamp overwrites the addresses and protocol of an existing header and
// recomputes its checksum. Every other field keeps its value.
func (h *IPHeader) Restamp(src, dst IPv4Address, proto Protocol) {
	copy(h[12:16], src[:])
	copy(h[16:20], dst[:])
	h[9] = byte(proto)
	h.UpdateChecksum()
}

// UpdateChecksum zeroes the checksum field, checksums the header and
// stores the result.
func (h *IPHeader) UpdateChecksum() {
	put16(h[10:12], h.ComputeChecksum())
}

// ComputeChecksum returns the header checksum as it would be with the
// checksum field zeroed. The header is not modified.
func (h *IPHeader) ComputeChecksum() uint16 {
	var c Checksummer
	for i := 0; i < IPHeaderLen; i += 2 {
		if i == 10 {
			continue
		}
		c.AddUint16(get16(h[i : i+2]))
	}
	return c.Sum16()
}

// Valid reports whether the stored checksum matches the header bytes.
func (h *IPHeader) Valid() bool { return Checksum(h[:]) == 0 }

// PutIPHeader builds a header for the payload already in buf[20:] and
// writes it over buf[:20]. It panics if buf is shorter than 20 bytes.
func PutIPHeader(buf []byte, data IPData, ids IdentifierSource) IPHeader {
	_ = buf[IPHeaderLen-1]
	var h IPHeader
	h.Set(data, uint16(len(buf)-IPHeaderLen), ids)
	copy(buf, h[:])
	return h
}

// IPHeaderFrom copies the header out of the first 20 bytes of buf.
func IPHeaderFrom(buf []byte) IPHeader {
	return IPHeader(buf[:IPHeaderLen])
}

// IPPayload returns the bytes following the IP header in buf.
func IPPayload(buf []byte) []byte { return buf[IPHeaderLen:] }

// IPAllLength returns the datagram length for a payload of n bytes.
func IPAllLength(n uint16) uint16 { return n + IPHeaderLen }

// Version returns the top nibble of the first byte.
func (h *IPHeader) Version() uint8 { return h[0] >> 4 }

// HeaderLength returns the IHL field, in 32-bit words.
func (h *IPHeader) HeaderLength() uint8 { return h[0] & 0x0f }

func (h *IPHeader) TOS() uint8               { return h[1] }
func (h *IPHeader) TotalLength() uint16      { return get16(h[2:4]) }
func (h *IPHeader) ID() uint16               { return get16(h[4:6]) }
func (h *IPHeader) Flags() IPFlags           { return IPFlags(get16(h[6:8])) }
func (h *IPHeader) FragmentOffset() uint16   { return h.Flags().FragmentOffset() }
func (h *IPHeader) TTL() uint8               { return h[8] }
func (h *IPHeader) Protocol() Protocol       { return Protocol(h[9]) }
func (h *IPHeader) Checksum() uint16         { return get16(h[10:12]) }
func (h *IPHeader) Source() IPv4Address      { return IPv4Address(h[12:16]) }
func (h *IPHeader) Destination() IPv4Address { return IPv4Address(h[16:20]) }

// PseudoHeader returns the pseudo-header for the transport segment this
// header carries.
func (h *IPHeader) PseudoHeader() PseudoHeader {
	return NewPseudoHeader(h.Source(), h.Destination(), h.Protocol(), h.TotalLength()-uint16(h.HeaderLength())*4)
}

func (h *IPHeader) SetTOS(tos uint8)              { h[1] = tos }
func (h *IPHeader) SetTotalLength(n uint16)       { put16(h[2:4], n) }
func (h *IPHeader) SetID(id uint16)               { put16(h[4:6], id) }
func (h *IPHeader) SetFlags(f IPFlags)            { put16(h[6:8], uint16(f)) }
func (h *IPHeader) SetTTL(ttl uint8)              { h[8] = ttl }
func (h *IPHeader) SetProtocol(p Protocol)        { h[9] = byte(p) }
func (h *IPHeader) SetSource(ip IPv4Address)      { copy(h[12:16], ip[:]) }
func (h *IPHeader) SetDestination(ip IPv4Address) { copy(h[16:20], ip[:]) }

func (h *IPHeader) String() string {
	return fmt.Sprintf("IP %s SRC=%s DST=%s LEN=%d TTL=%d ID=%d", h.Protocol(), h.Source(), h.Destination(), h.TotalLength(), h.TTL(), h.ID())
}

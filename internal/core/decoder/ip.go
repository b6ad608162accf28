package decoder

import (
	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// decodeIP decodes an IPv4 header and verifies its checksum.
// Returns IPHeader and the transport segment bounded by Total Length.
func decodeIP(data []byte, verify bool) (core.IPHeader, []byte, error) {
	if len(data) < 1 {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	// Check IP version (first 4 bits)
	if data[0]>>4 != 4 {
		return core.IPHeader{Version: data[0] >> 4}, nil, core.ErrUnsupportedProto
	}
	return decodeIPv4(data, verify)
}

// decodeIPv4 decodes IPv4 header.
func decodeIPv4(data []byte, verify bool) (core.IPHeader, []byte, error) {
	if len(data) < tcpip.IPHeaderLen {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	// IHL (Internet Header Length) is in 32-bit words
	headerLen := int(data[0]&0x0F) * 4
	if headerLen < tcpip.IPHeaderLen || len(data) < headerLen {
		return core.IPHeader{}, nil, core.ErrPacketTooShort
	}

	h := tcpip.IPHeaderFrom(data)
	ip := core.IPHeader{
		Version:  h.Version(),
		SrcIP:    h.Source(),
		DstIP:    h.Destination(),
		Protocol: h.Protocol(),
		TTL:      h.TTL(),
		TotalLen: h.TotalLength(),
		ID:       h.ID(),
		Flags:    h.Flags(),
		Checksum: h.Checksum(),
	}

	// Options are covered by the header checksum as well.
	if verify && tcpip.Checksum(data[:headerLen]) != 0 {
		return ip, nil, core.ErrBadChecksum
	}

	totalLen := int(ip.TotalLen)
	if totalLen < headerLen || totalLen > len(data) {
		return ip, nil, core.ErrPacketTooShort
	}

	if isIPFragment(ip.Flags) {
		return ip, nil, core.ErrFragmented
	}

	// Trailing link-layer padding past Total Length is dropped.
	return ip, data[headerLen:totalLen], nil
}

// isIPFragment checks if an IP packet is a fragment.
func isIPFragment(flags tcpip.IPFlags) bool {
	return flags.MoreFragments() || flags.FragmentOffset() != 0
}

// Package builder assembles complete IPv4 datagrams from header fields and
// payloads using the tcpip codec.
package builder

import (
	"fmt"
	"log/slog"
	"math"

	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// MaxUDPPayload is the largest payload that fits a single IPv4/UDP datagram.
const MaxUDPPayload = math.MaxUint16 - tcpip.IPHeaderLen - tcpip.UDPHeaderLen

// Builder builds outgoing datagrams. It owns the identification source
// stamped into every full IP header it builds.
type Builder struct {
	ids    tcpip.IdentifierSource
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithIdentifiers sets the identification source. Without it the
// process-wide tcpip.DefaultIdentifiers is used.
func WithIdentifiers(ids tcpip.IdentifierSource) Option {
	return func(b *Builder) { b.ids = ids }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		ids:    tcpip.DefaultIdentifiers,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "builder")
	return b
}

// BuildUDP returns a checksummed IPv4/UDP datagram carrying payload along q.
func (b *Builder) BuildUDP(q tcpip.Quaternion, payload []byte) ([]byte, error) {
	if len(payload) > MaxUDPPayload {
		return nil, fmt.Errorf("udp payload of %d bytes: %w", len(payload), core.ErrPayloadTooLarge)
	}

	frame := make([]byte, tcpip.IPHeaderLen+tcpip.UDPHeaderLen+len(payload))
	copy(frame[tcpip.IPHeaderLen+tcpip.UDPHeaderLen:], payload)

	tcpip.SetUDP(q, tcpip.IPPayload(frame))
	h := tcpip.PutIPHeader(frame, tcpip.IPData{
		Source:      q.Source.Address,
		Destination: q.Destination.Address,
		Protocol:    tcpip.ProtocolUDP,
	}, b.ids)

	b.logger.Debug("built udp datagram", "flow", q.String(), "id", h.ID(), "len", len(frame))
	return frame, nil
}

// BuildIP returns an IPv4 datagram whose payload is the prebuilt transport
// segment. The segment is copied; its checksum is left as is.
func (b *Builder) BuildIP(data tcpip.IPData, segment []byte) ([]byte, error) {
	if len(segment) > math.MaxUint16-tcpip.IPHeaderLen {
		return nil, fmt.Errorf("ip payload of %d bytes: %w", len(segment), core.ErrPayloadTooLarge)
	}

	frame := make([]byte, tcpip.IPHeaderLen+len(segment))
	copy(tcpip.IPPayload(frame), segment)
	h := tcpip.PutIPHeader(frame, data, b.ids)

	b.logger.Debug("built ip datagram", "src", data.Source, "dst", data.Destination, "proto", data.Protocol, "id", h.ID(), "len", len(frame))
	return frame, nil
}

// Retarget copies a datagram built by BuildUDP and points the copy at a
// new four-tuple. The IP header is re-stamped in place, so its
// identification, TTL and flags are those of the original.
func (b *Builder) Retarget(frame []byte, q tcpip.Quaternion) ([]byte, error) {
	if len(frame) < tcpip.IPHeaderLen+tcpip.UDPHeaderLen {
		return nil, fmt.Errorf("retarget %d byte frame: %w", len(frame), core.ErrPacketTooShort)
	}
	h := tcpip.IPHeaderFrom(frame)
	if h.Protocol() != tcpip.ProtocolUDP || h.HeaderLength() != tcpip.IPHeaderLen/4 {
		return nil, fmt.Errorf("retarget %s datagram: %w", h.Protocol(), core.ErrUnsupportedProto)
	}

	out := make([]byte, len(frame))
	copy(out, frame)

	tcpip.SetUDP(q, tcpip.IPPayload(out))
	h.Restamp(q.Source.Address, q.Destination.Address, tcpip.ProtocolUDP)
	copy(out, h[:])
	return out, nil
}

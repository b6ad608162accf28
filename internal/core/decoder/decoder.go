// Package decoder implements L3-L4 decoding of raw IPv4 datagrams with
// checksum verification.
package decoder

import (
	"fmt"
	"log/slog"

	"firestige.xyz/pktcraft/internal/core"
)

// Decoder decodes raw packets into structured format.
type Decoder interface {
	Decode(raw core.RawPacket) (core.DecodedPacket, error)
}

// Config controls which checksums are verified.
type Config struct {
	SkipIPChecksum        bool
	SkipTransportChecksum bool
}

// StandardDecoder decodes IPv4 datagrams carrying UDP, TCP or any other
// protocol. Only UDP has its transport checksum verified.
type StandardDecoder struct {
	cfg    Config
	logger *slog.Logger
}

// NewStandardDecoder creates a decoder.
func NewStandardDecoder(cfg Config) *StandardDecoder {
	return &StandardDecoder{
		cfg:    cfg,
		logger: slog.Default().With("component", "decoder"),
	}
}

// Decode implements Decoder.
func (d *StandardDecoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	decoded := core.DecodedPacket{
		Timestamp:  raw.Timestamp,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
	}

	ip, segment, err := decodeIP(raw.Data, !d.cfg.SkipIPChecksum)
	if err != nil {
		return decoded, fmt.Errorf("ip: %w", err)
	}
	decoded.IP = ip

	transport, payload, err := decodeTransport(ip, segment, !d.cfg.SkipTransportChecksum)
	if err != nil {
		d.logger.Debug("transport decode failed", "src", ip.SrcIP, "dst", ip.DstIP, "proto", ip.Protocol, "error", err)
		return decoded, fmt.Errorf("%s: %w", ip.Protocol, err)
	}
	decoded.Transport = transport
	decoded.Payload = payload
	return decoded, nil
}

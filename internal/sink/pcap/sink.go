// Package pcap writes finished datagrams to pcap files with a raw IPv4
// link type.
package pcap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/pktcraft/internal/core"
)

// DefaultSnapLen is used when a zero snap length is given.
const DefaultSnapLen = 65535

// Sink writes datagrams to a pcap stream.
type Sink struct {
	w       *pcapgo.Writer
	closer  io.Closer
	snapLen uint32
	written int
	logger  *slog.Logger
}

// Create creates (or truncates) a pcap file at path.
func Create(path string, snapLen uint32) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcap file %s: %w", path, err)
	}
	s, err := NewSink(f, snapLen)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	s.logger = s.logger.With("path", path)
	return s, nil
}

// NewSink writes a pcap file header to w and returns a Sink appending to it.
func NewSink(w io.Writer, snapLen uint32) (*Sink, error) {
	if snapLen == 0 {
		snapLen = DefaultSnapLen
	}
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, layers.LinkTypeRaw); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Sink{
		w:       pw,
		snapLen: snapLen,
		logger:  slog.Default().With("component", "pcap-sink"),
	}, nil
}

// Send implements sink.Sink. Datagrams longer than the snap length are
// truncated in the capture record; OrigLen keeps the full length.
func (s *Sink) Send(pkt core.RawPacket) error {
	data := pkt.Data
	if uint32(len(data)) > s.snapLen {
		data = data[:s.snapLen]
	}
	ci := gopacket.CaptureInfo{
		Timestamp:     pkt.Timestamp,
		CaptureLength: len(data),
		Length:        len(pkt.Data),
	}
	if err := s.w.WritePacket(ci, data); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	s.written++
	return nil
}

// Written returns the number of packets written.
func (s *Sink) Written() int { return s.written }

// Close closes the underlying file, if the Sink opened it.
func (s *Sink) Close() error {
	s.logger.Debug("pcap sink closed", "packets", s.written)
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

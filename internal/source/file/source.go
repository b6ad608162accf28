// Package file reads raw IPv4 datagrams back from pcap files.
package file

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/pktcraft/internal/core"
)

// linkTypeIPv4 is LINKTYPE_IPV4; like LINKTYPE_RAW it carries bare IPv4.
const linkTypeIPv4 = layers.LinkType(228)

// Source reads datagrams from a pcap stream.
type Source struct {
	path   string
	reader *pcapgo.Reader
	closer io.Closer
}

// Open opens the pcap file at path.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	s, err := NewSource(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.path = path
	s.closer = f
	return s, nil
}

// NewSource reads the pcap file header from r. Only raw IPv4 link types
// are accepted.
func NewSource(r io.Reader) (*Source, error) {
	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}
	if lt := reader.LinkType(); lt != layers.LinkTypeRaw && lt != linkTypeIPv4 {
		return nil, fmt.Errorf("link type %s: %w", lt, core.ErrLinkType)
	}
	return &Source{reader: reader}, nil
}

// ReadPacket returns the next datagram, or io.EOF at the end of the file.
func (s *Source) ReadPacket() (core.RawPacket, error) {
	data, ci, err := s.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return core.RawPacket{}, io.EOF
		}
		return core.RawPacket{}, fmt.Errorf("failed to read packet: %w", err)
	}
	return core.RawPacket{
		Data:       data,
		Timestamp:  ci.Timestamp,
		CaptureLen: uint32(ci.CaptureLength),
		OrigLen:    uint32(ci.Length),
	}, nil
}

// Close closes the underlying file, if the Source opened it.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

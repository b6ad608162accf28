// Package console prints finished datagrams as a one-line summary followed
// by a hex dump.
package console

import (
	"encoding/hex"
	"fmt"
	"io"

	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// Sink prints datagrams to w.
type Sink struct {
	w io.Writer
	n int
}

// NewSink creates a console sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Send implements sink.Sink.
func (s *Sink) Send(pkt core.RawPacket) error {
	s.n++
	summary := fmt.Sprintf("#%d %d bytes", s.n, len(pkt.Data))
	if len(pkt.Data) >= tcpip.IPHeaderLen {
		h := tcpip.IPHeaderFrom(pkt.Data)
		summary = fmt.Sprintf("#%d %s", s.n, h.String())
	}
	if _, err := fmt.Fprintln(s.w, summary); err != nil {
		return err
	}
	_, err := io.WriteString(s.w, hex.Dump(pkt.Data))
	return err
}

// Close implements sink.Sink.
func (s *Sink) Close() error {
	return nil
}

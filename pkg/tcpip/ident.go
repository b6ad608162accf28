package tcpip

import "go.uber.org/atomic"

// IdentifierSource hands out values for the IPv4 Identification field.
type IdentifierSource interface {
	Next() uint16
}

// IdentifierGenerator is a concurrency-safe, wrapping 16-bit counter.
// The zero value is ready to use and starts at 1.
type IdentifierGenerator struct {
	n atomic.Uint32
}

// DefaultIdentifiers is the process-wide source used by IPHeader.Set when
// the caller passes a nil IdentifierSource.
var DefaultIdentifiers = &IdentifierGenerator{}

// NewIdentifierGenerator returns a generator whose first Next call
// returns start.
func NewIdentifierGenerator(start uint16) *IdentifierGenerator {
	g := &IdentifierGenerator{}
	g.n.Store(uint32(start) - 1)
	return g
}

// Next returns the next identifier. Concurrent callers never observe the
// same value unless more than 65536 calls happen in between.
func (g *IdentifierGenerator) Next() uint16 {
	return uint16(g.n.Inc())
}

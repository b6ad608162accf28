// Package sink defines where finished datagrams are delivered.
package sink

import "firestige.xyz/pktcraft/internal/core"

// Sink consumes finished datagrams.
type Sink interface {
	Send(pkt core.RawPacket) error
	Close() error
}

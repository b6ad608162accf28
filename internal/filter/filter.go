// Package filter selects decoded datagrams through a chain of filters. A
// filter passes a datagram on by calling chain.Filter, or drops it by
// returning without doing so.
package filter

import (
	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// Filter inspects one datagram and decides whether the rest of the chain
// sees it.
type Filter interface {
	Filter(pkt *core.DecodedPacket, chain *FilterChain)
}

// Func adapts a predicate to a Filter.
type Func func(pkt *core.DecodedPacket) bool

// Filter implements Filter.
func (f Func) Filter(pkt *core.DecodedPacket, chain *FilterChain) {
	if f(pkt) {
		chain.Filter(pkt)
	}
}

// Protocol passes datagrams carrying proto.
func Protocol(proto tcpip.Protocol) Filter {
	return Func(func(pkt *core.DecodedPacket) bool {
		return pkt.IP.Protocol == proto
	})
}

// Host passes datagrams with addr as source or destination.
func Host(addr tcpip.IPv4Address) Filter {
	return Func(func(pkt *core.DecodedPacket) bool {
		return pkt.IP.SrcIP == addr || pkt.IP.DstIP == addr
	})
}

// Port passes datagrams with port as source or destination port.
func Port(port uint16) Filter {
	return Func(func(pkt *core.DecodedPacket) bool {
		return pkt.Transport.SrcPort == port || pkt.Transport.DstPort == port
	})
}

// CounterFilter counts the datagrams that reach it and passes them all.
type CounterFilter struct {
	count int
}

func NewCounterFilter() *CounterFilter {
	return &CounterFilter{count: 0}
}

func (f *CounterFilter) Filter(pkt *core.DecodedPacket, chain *FilterChain) {
	f.count++
	chain.Filter(pkt)
}

func (f *CounterFilter) GetCount() int {
	return f.count
}

package filter

import "firestige.xyz/pktcraft/internal/core"

// FilterChain runs filters in order and hands datagrams that pass all of
// them to handler.
type FilterChain struct {
	handler func(pkt *core.DecodedPacket)
	current Filter
	chain   *FilterChain
}

func NewFilterChain(handler func(pkt *core.DecodedPacket), filters []Filter) *FilterChain {
	allFilters := make([]Filter, len(filters))
	copy(allFilters, filters)
	return initChain(allFilters, handler)
}

func newChain(handler func(pkt *core.DecodedPacket), current Filter, chain *FilterChain) *FilterChain {
	return &FilterChain{
		handler: handler,
		current: current,
		chain:   chain,
	}
}

func initChain(filters []Filter, handler func(pkt *core.DecodedPacket)) *FilterChain {
	chain := newChain(handler, nil, nil)
	for i := len(filters) - 1; i >= 0; i-- {
		chain = newChain(handler, filters[i], chain)
	}
	return chain
}

// Filter passes pkt to the next filter, or to the handler at the end of
// the chain.
func (c *FilterChain) Filter(pkt *core.DecodedPacket) {
	if c.current != nil && c.chain != nil {
		c.current.Filter(pkt, c.chain)
	} else {
		c.handler(pkt)
	}
}

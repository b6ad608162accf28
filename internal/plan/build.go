package plan

import (
	"fmt"

	"firestige.xyz/pktcraft/internal/builder"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// Frame is one datagram produced from a plan entry.
type Frame struct {
	Packet string
	Flow   tcpip.Quaternion
	Data   []byte
}

// Build expands a validated plan into datagrams, in plan order. Each
// repetition of a UDP entry is built once for its first destination and
// retargeted for the others, so all copies of one repetition share an
// identification value.
func (pl *Plan) Build(b *builder.Builder) ([]Frame, error) {
	frames := make([]Frame, 0, pl.Datagrams())
	for i := range pl.Packets {
		p := &pl.Packets[i]
		for n := 0; n < p.Count; n++ {
			var err error
			if p.Protocol == tcpip.ProtocolUDP {
				frames, err = buildUDP(b, p, frames)
			} else {
				frames, err = buildIP(b, p, frames)
			}
			if err != nil {
				return nil, fmt.Errorf("packet %q: %w", p.Name, err)
			}
		}
	}
	return frames, nil
}

func buildUDP(b *builder.Builder, p *Packet, frames []Frame) ([]Frame, error) {
	q := tcpip.NewQuaternion(p.Source, p.Destinations[0])
	first, err := b.BuildUDP(q, p.data)
	if err != nil {
		return nil, err
	}
	frames = append(frames, Frame{Packet: p.Name, Flow: q, Data: first})

	for _, dst := range p.Destinations[1:] {
		q := tcpip.NewQuaternion(p.Source, dst)
		data, err := b.Retarget(first, q)
		if err != nil {
			return nil, err
		}
		frames = append(frames, Frame{Packet: p.Name, Flow: q, Data: data})
	}
	return frames, nil
}

func buildIP(b *builder.Builder, p *Packet, frames []Frame) ([]Frame, error) {
	for _, dst := range p.Destinations {
		data, err := b.BuildIP(tcpip.IPData{
			Source:      p.Source.Address,
			Destination: dst.Address,
			Protocol:    p.Protocol,
		}, p.data)
		if err != nil {
			return nil, err
		}
		frames = append(frames, Frame{Packet: p.Name, Flow: tcpip.NewQuaternion(p.Source, dst), Data: data})
	}
	return frames, nil
}

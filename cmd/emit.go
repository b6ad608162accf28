package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"firestige.xyz/pktcraft/internal/config"
	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/internal/plan"
)

// emitPlan builds every datagram of a validated plan and writes them to
// output. Timestamps start at now and advance by one microsecond per
// datagram so that capture order is preserved.
func emitPlan(pl *plan.Plan, c *config.Config, output string, stdout io.Writer) (int, error) {
	frames, err := pl.Build(newBuilder(c))
	if err != nil {
		return 0, err
	}

	s, err := openSink(output, c, stdout)
	if err != nil {
		return 0, err
	}

	ts := time.Now()
	for i, f := range frames {
		pkt := core.RawPacket{Data: f.Data, Timestamp: ts.Add(time.Duration(i) * time.Microsecond)}
		if err := s.Send(pkt); err != nil {
			s.Close()
			return i, fmt.Errorf("packet %q: %w", f.Packet, err)
		}
	}
	if err := s.Close(); err != nil {
		return len(frames), fmt.Errorf("failed to close output: %w", err)
	}

	slog.Info("datagrams written", "plan", pl.Name, "count", len(frames), "output", output)
	return len(frames), nil
}

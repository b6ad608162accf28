package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/pktcraft/internal/config"
	"firestige.xyz/pktcraft/internal/plan"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// udpOptions holds the flags of the udp command.
type udpOptions struct {
	source       string
	destinations []string
	payload      string
	payloadHex   string
	count        int
	output       string
}

var udpOpts udpOptions

var udpCmd = &cobra.Command{
	Use:   "udp",
	Short: "Build UDP datagrams for one source and one or more destinations",
	Long: `Build checksummed IPv4/UDP datagrams and write them to a pcap file or the console.

The first destination gets a freshly built datagram; further destinations get
a copy re-stamped for their four-tuple.

Examples:
  pktcraft udp --src 10.0.0.1:5060 --dst 10.0.0.2:5060 --payload "hello"
  pktcraft udp --dst 10.0.0.2:53 --dst 10.0.0.3:53 --payload-hex 0001 -o out.pcap`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUDP(udpOpts, cfg, cmd.OutOrStdout())
	},
}

func init() {
	udpCmd.Flags().StringVar(&udpOpts.source, "src", "", "source endpoint a.b.c.d:port (default: defaults.source from config)")
	udpCmd.Flags().StringSliceVar(&udpOpts.destinations, "dst", nil, "destination endpoint a.b.c.d:port (repeatable, required)")
	udpCmd.Flags().StringVar(&udpOpts.payload, "payload", "", "payload text")
	udpCmd.Flags().StringVar(&udpOpts.payloadHex, "payload-hex", "", "payload as hex bytes")
	udpCmd.Flags().IntVarP(&udpOpts.count, "count", "n", 1, "number of datagrams per destination")
	udpCmd.Flags().StringVarP(&udpOpts.output, "output", "o", "-", "pcap file to write, - for console")
	udpCmd.MarkFlagRequired("dst")
}

func runUDP(opts udpOptions, c *config.Config, out io.Writer) error {
	if opts.count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", opts.count)
	}
	pkt := plan.Packet{
		Name:       "udp",
		Protocol:   tcpip.ProtocolUDP,
		Payload:    opts.payload,
		PayloadHex: opts.payloadHex,
		Count:      opts.count,
	}
	if opts.source != "" {
		src, err := tcpip.ParseIPv4EndPoint(opts.source)
		if err != nil {
			return fmt.Errorf("--src: %w", err)
		}
		pkt.Source = src
	}
	for _, s := range opts.destinations {
		dst, err := tcpip.ParseIPv4EndPoint(s)
		if err != nil {
			return fmt.Errorf("--dst: %w", err)
		}
		pkt.Destinations = append(pkt.Destinations, dst)
	}

	pl := &plan.Plan{Name: "udp", Packets: []plan.Packet{pkt}}
	if err := pl.Validate(c.Defaults); err != nil {
		return err
	}

	_, err := emitPlan(pl, c, opts.output, out)
	return err
}

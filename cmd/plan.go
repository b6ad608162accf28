package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/pktcraft/internal/config"
	"firestige.xyz/pktcraft/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build the datagrams described by a packet plan file",
	Long: `Build every datagram listed in a packet plan file (JSON or YAML) and write
them to a pcap file or the console. File format is auto-detected from
extension (.json is JSON, anything else YAML).

Examples:
  pktcraft plan -f probes.yaml -o probes.pcap
  pktcraft plan -f probes.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(planFile, planOutput, cfg, cmd.OutOrStdout())
	},
}

var (
	planFile   string
	planOutput string
)

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "packet plan file (required)")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "-", "pcap file to write, - for console")
	planCmd.MarkFlagRequired("file")
}

func runPlan(path, output string, c *config.Config, out io.Writer) error {
	pl, err := plan.Load(path, c.Defaults)
	if err != nil {
		return err
	}
	n, err := emitPlan(pl, c, output, out)
	if err != nil {
		return err
	}
	if output != "" && output != "-" {
		fmt.Fprintf(out, "wrote %d datagram(s) to %s\n", n, output)
	}
	return nil
}

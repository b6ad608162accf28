package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/pktcraft/pkg/tcpip"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <hex>...",
	Short: "Compute the RFC 1071 Internet checksum of hex bytes",
	Long: `Compute the RFC 1071 Internet checksum of the bytes given as hex arguments.
Arguments are concatenated; blanks inside an argument are ignored.
A buffer that already contains its own checksum sums to 0x0000.

Examples:
  pktcraft checksum 0001f203f4f5f6f7
  pktcraft checksum "45 00 00 1c" "00 01 40 00"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecksum(args, cmd.OutOrStdout())
	},
}

func runChecksum(args []string, out io.Writer) error {
	var c tcpip.Checksummer
	for i, arg := range args {
		data, err := hex.DecodeString(strings.Join(strings.Fields(arg), ""))
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		c.Write(data)
	}
	fmt.Fprintf(out, "0x%04x\n", c.Sum16())
	return nil
}

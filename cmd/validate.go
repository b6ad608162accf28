package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/pktcraft/internal/config"
	"firestige.xyz/pktcraft/internal/plan"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a packet plan file",
	Long: `Validate a packet plan file (JSON or YAML) without building anything.

This is useful for pre-checking a plan before running it.
File format is auto-detected from extension (.json, .yaml, .yml).

Examples:
  pktcraft validate -f plan.json
  pktcraft validate -f plan.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(validatePlanFile, cfg, cmd.OutOrStdout())
	},
}

var validatePlanFile string

func init() {
	validateCmd.Flags().StringVarP(&validatePlanFile, "file", "f", "",
		"packet plan file to validate (required)")
	validateCmd.MarkFlagRequired("file")
}

func runValidate(path string, c *config.Config, out io.Writer) error {
	pl, err := plan.Load(path, c.Defaults)
	if err != nil {
		fmt.Fprintf(out, "INVALID: %v\n", err)
		return err
	}

	fmt.Fprintf(out, "VALID: plan %q, %d packet(s), %d datagram(s)\n",
		pl.Name,
		len(pl.Packets),
		pl.Datagrams(),
	)
	return nil
}

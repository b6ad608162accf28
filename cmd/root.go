// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"firestige.xyz/pktcraft/internal/builder"
	"firestige.xyz/pktcraft/internal/config"
	"firestige.xyz/pktcraft/internal/log"
	"firestige.xyz/pktcraft/internal/sink"
	"firestige.xyz/pktcraft/internal/sink/console"
	"firestige.xyz/pktcraft/internal/sink/pcap"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

var (
	// Global flags
	configFile string
	logLevel   string

	// cfg is loaded by the root command before any subcommand runs.
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pktcraft",
	Short: "pktcraft - build and verify raw IPv4/UDP datagrams",
	Long: `pktcraft builds checksummed IPv4/UDP datagrams from command-line flags or
packet plan files and writes them to pcap files (raw IPv4 link type) or the
console. It can also decode and verify existing raw-IP captures.

Configuration is read from an optional YAML file under the "pktcraft:" root
key; PKTCRAFT_* environment variables override it (e.g. PKTCRAFT_LOG_LEVEL).`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log level (debug/info/warn/error)")

	rootCmd.AddCommand(udpCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(checksumCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
		if err := loaded.ValidateAndApplyDefaults(); err != nil {
			return err
		}
	}
	if err := log.Init(loaded.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	cfg = loaded
	slog.Debug("configuration loaded", "file", configFile, "snap_len", cfg.Output.SnapLen, "ident_start", cfg.Ident.First())
	return nil
}

// newBuilder returns a builder whose identification counter starts at the
// configured value.
func newBuilder(c *config.Config) *builder.Builder {
	return builder.New(builder.WithIdentifiers(tcpip.NewIdentifierGenerator(c.Ident.First())))
}

// openSink opens a pcap sink at path, or a console sink on stdout when
// path is empty or "-".
func openSink(path string, c *config.Config, stdout io.Writer) (sink.Sink, error) {
	if path == "" || path == "-" {
		return console.NewSink(stdout), nil
	}
	return pcap.Create(path, c.Output.SnapLen)
}

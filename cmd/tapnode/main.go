// Tapnode is a device agent for smartap-class IoT nodes.
//
// It brings up the status LED, configuration store, network, mDNS
// advertisement and local control server through a staged boot
// sequence with guaranteed reverse-order teardown, then serves the
// device control API until shut down.
//
// Usage:
//
//	tapnode run [flags]
//
// See 'tapnode run --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tapnode/internal/agent"
	"github.com/muurk/tapnode/internal/logging"
	"github.com/muurk/tapnode/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tapnode",
	Short: "Tapnode device agent",
	Long: `A device-side agent for smartap-class IoT nodes.

The agent advertises itself over mDNS and exposes the same local HTTP
control surface the device firmware exposes: an embedded control page
and a small LED/status API. Subsystems come up through a staged boot
sequence; if any stage fails, everything already acquired is released
in reverse order before the agent exits.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run command and flags
var (
	configPath string
	host       string
	port       int
	ledPath    string
	logLevel   string
	noMDNS     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the device agent",
	Long: `Start the tapnode agent.

The agent loads its configuration store (creating it with defaults on
first run), opens the status LED, waits for the network, registers the
mDNS advertisement and starts the control server. It then runs until
interrupted, releasing every subsystem in reverse order on shutdown.`,
	Example: `  # Start with the on-disk configuration
  tapnode run

  # Start on a custom port with verbose logging
  tapnode run --port 9090 --log-level debug

  # Start without hardware access (in-memory LED) or mDNS
  tapnode run --led "" --no-mdns`,
	RunE: runAgent,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: platform config dir)")
	runCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	runCmd.Flags().IntVar(&port, "port", 0, "Control server port (overrides config file)")
	runCmd.Flags().StringVar(&ledPath, "led", "", "Status LED brightness file (overrides config file; empty = in-memory driver)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Disable the mDNS advertisement")
}

func runAgent(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	opts := agent.Options{
		ConfigPath: configPath,
		Host:       host,
		NoMDNS:     noMDNS,
	}
	if cmd.Flags().Changed("port") {
		opts.Port = &port
	}
	if cmd.Flags().Changed("led") {
		opts.LEDPath = &ledPath
	}

	return agent.New(opts).Run(cmd.Context())
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tapnode %s\n", version.Full())
	},
}

// cmd/bmspoller/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bmspoller",
		Short: "Modbus BMS and inverter poller",
		Long: `bmspoller polls battery management systems and inverters over Modbus
TCP or RTU, decodes their register maps and logs the readings to CSV,
SQLite, Prometheus and the console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newPortsCmd())
	rootCmd.AddCommand(newProfilesCmd())

	return rootCmd
}

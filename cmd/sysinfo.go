// Package cmd contains the audionode cobra subcommands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/command"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/telemetry"
)

// CreateSysinfoCmd creates the sysinfo command: a one-shot telemetry
// snapshot printed as JSON, field-identical to GET /system.
func CreateSysinfoCmd() *cobra.Command {
	var tempsOnly bool

	cmd := &cobra.Command{
		Use:   "sysinfo",
		Short: "Print a host telemetry snapshot",
		Long: `Collects the same telemetry snapshot the /system endpoint serves and ` +
			`prints it as indented JSON. Sources that cannot be read are omitted.`,
		Run: func(_ *cobra.Command, _ []string) {
			// Keep stdout clean for the JSON payload
			logging.Initialize(logging.Config{Level: "error", Format: "text"})

			caps := telemetry.DetectCapabilities()
			collector := telemetry.NewCollector(caps, command.NewExecutor())

			var payload any
			if tempsOnly {
				payload = collector.TemperatureOnly(context.Background())
			} else {
				payload = collector.Collect(context.Background())
			}

			encoded, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "failed to encode snapshot:", err)
				os.Exit(1)
			}
			fmt.Println(string(encoded))
		},
	}

	cmd.Flags().BoolVar(&tempsOnly, "temps", false, "Only collect CPU and GPU temperature")

	return cmd
}

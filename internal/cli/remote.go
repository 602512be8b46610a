package cli

import (
	"fmt"
	"strconv"

	"github.com/lazypower/sensorgraph/internal/client"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	acceptType string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health of a running gateway",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := client.New(serverURL).Health(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status:  %s (%s, up %.0fs)\n", h.Status, h.Version, h.Uptime)
		fmt.Fprintf(out, "present: %t (%d tags tracked)\n", h.Present, h.Tracked)
		fmt.Fprintf(out, "leds:    %d\n", h.LEDs)
		fmt.Fprintf(out, "journal: %t\n", h.Journal)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Fetch a resource document from a running gateway",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := client.New(serverURL).Document(cmd.Context(), args[0], acceptType)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var ledCmd = &cobra.Command{
	Use:   "led <index|all> <on|off>",
	Short: "Switch an LED, or all LEDs off",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch args[1] {
		case "on":
			on = true
		case "off":
		default:
			return fmt.Errorf("state must be on or off, got %q", args[1])
		}

		c := client.New(serverURL)
		if args[0] == "all" {
			if on {
				return fmt.Errorf("only \"led all off\" is supported")
			}
			return c.ClearLEDs(cmd.Context())
		}

		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("led index %q: %w", args[0], err)
		}
		return c.SetLED(cmd.Context(), index, on)
	},
}

func init() {
	for _, c := range []*cobra.Command{statusCmd, getCmd, ledCmd} {
		c.Flags().StringVar(&serverURL, "url", "", "gateway URL (default $"+client.EnvServerURL+" or http://127.0.0.1:80)")
	}
	getCmd.Flags().StringVarP(&acceptType, "accept", "a", "", "media type to request (text/turtle, application/n-triples, application/rdf+xml)")
}

package cli

import (
	"fmt"

	"github.com/lazypower/sensorgraph/internal/config"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "listen:   %s\n", cfg.ListenAddr())
		fmt.Fprintf(out, "presence: tick %s, quiet %s, max age %d\n",
			cfg.Presence.TickInterval, cfg.Presence.QuietPeriod, cfg.Presence.MaxAge)
		fmt.Fprintf(out, "leds:     %d (%d sysfs)\n", cfg.LEDs.Count, len(cfg.LEDs.Sysfs))
		for _, w := range cfg.Warnings() {
			fmt.Fprintf(out, "warning:  %s\n", w)
		}
		fmt.Fprintln(out, "config ok")
		return nil
	},
}

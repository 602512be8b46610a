package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sensorgraph",
	Short: "Linked Data gateway for ambient sensors, LEDs and RFID presence",
	Long:  "Sensorgraph publishes the readings and actuators of a small sensor board as RDF documents over HTTP.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default $SENSORGRAPH_CONFIG)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(ledCmd)
}

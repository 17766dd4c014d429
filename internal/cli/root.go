// Package cli собирает команды бинарника координации.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bear",
	Short: "Emergency incident coordination engine",
	Long: "Keeps the real-time session of a responder or a resident: socket channel, location streaming, " +
		"incident lifecycle and chat, exposed to UI surfaces through a local HTTP API.",
	SilenceUsage: true,
}

// Execute запускает корневую команду
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(versionCmd)
}

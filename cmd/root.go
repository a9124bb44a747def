package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spindle",
	Short: "Link-state shortest-path route computation",
	Long: `Spindle computes loop-free shortest-path forwarding tables for a network
of routers from a link-state advertisement database, following RFC 2328-style
semantics (stub networks, transit networks, equal-cost multi-path and
AS-external routes).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "topology.yaml", "topology description")
}

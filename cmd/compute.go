package cmd

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftnet/spindle/core"
	"github.com/weftnet/spindle/impl"
	"github.com/weftnet/spindle/state"
)

// computeCmd runs one full recompute cycle over the configured topology
// and prints the resulting table per root.
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute forwarding tables for the configured topology",
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logPath, _ := cmd.Flags().GetString("log")
		rootName, _ := cmd.Flags().GetString("root")

		log, err := core.SetupLogger(verbose, logPath)
		if err != nil {
			panic(err)
		}

		cfg, err := state.LoadConfig(configPath)
		if err != nil {
			log.Error("failed to load topology", "path", configPath, "err", err)
			os.Exit(1)
		}

		var only netip.Addr
		if rootName != "" {
			r := cfg.Router(rootName)
			if r == nil {
				log.Error("unknown router", "name", rootName)
				os.Exit(1)
			}
			only = r.ID
		}

		tables := impl.NewForwardingTables(log)
		mgr := core.NewManager(log, &impl.ConfigDiscoverer{Cfg: cfg, Log: log}, tables)
		if _, err := mgr.Recompute(); err != nil {
			log.Error("recompute failed", "err", err)
			os.Exit(1)
		}

		for _, root := range tables.Roots() {
			if only.IsValid() && root != only {
				continue
			}
			fmt.Printf("routes for %s (%s):\n", routerName(cfg, root), root)
			for _, e := range tables.Table(root).Dump() {
				fmt.Printf("  %s\n", e)
			}
		}
	},
}

func routerName(cfg *state.Config, id netip.Addr) string {
	for _, r := range cfg.Routers {
		if r.ID == id {
			return r.Name
		}
	}
	return "?"
}

func init() {
	rootCmd.AddCommand(computeCmd)
	computeCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	computeCmd.Flags().String("log", "", "Also append logs to this file")
	computeCmd.Flags().String("root", "", "Only print the table of this router")
}

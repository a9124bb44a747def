package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftnet/spindle/core"
	"github.com/weftnet/spindle/impl"
	"github.com/weftnet/spindle/state"
)

// inspectCmd prints the advertisements discovery would feed to the engine,
// without computing anything.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the advertisements discovered from the topology",
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")

		log, err := core.SetupLogger(verbose, "")
		if err != nil {
			panic(err)
		}

		cfg, err := state.LoadConfig(configPath)
		if err != nil {
			log.Error("failed to load topology", "path", configPath, "err", err)
			os.Exit(1)
		}

		lsdb := state.NewLSDB()
		disc := &impl.ConfigDiscoverer{Cfg: cfg, Log: log}
		if err := disc.DiscoverLSAs(lsdb); err != nil {
			log.Error("discovery failed", "err", err)
			os.Exit(1)
		}

		lsdb.Range(func(lsa *state.LSA) bool {
			fmt.Println(lsa)
			for _, l := range lsa.Links {
				fmt.Printf("  %s\n", l)
			}
			return true
		})
		for i := 0; i < lsdb.ExternalCount(); i++ {
			fmt.Println(lsdb.ExternalAt(i))
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}

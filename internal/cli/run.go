package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nehonix-labs/oven/internal/config"
	"github.com/nehonix-labs/oven/internal/orchestrator"
)

var runCfg *config.Config

var runCmd = &cobra.Command{
	Use:   "run -- [child arguments...]",
	Short: "Run a single child process inside the sandbox",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCfg.Resolve(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			exitWith(1)
			return
		}
		if verbose {
			printBanner()
		}
		exitWith(orchestrator.Run(runCfg))
	},
}

func init() {
	runCfg = config.Bind(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const ovenBanner = `
   ____ _    _ ______ _   _
  / __ \ |  | |  ____| \ | |
 | |  | \ \  / | |__  |  \| |
 | |  | |\ \/ /|  __| | . \ |
 | |__| | \  / | |____| |\  |
  \____/   \/  |______|_| \_|
`

func printBanner() {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprint(os.Stderr, ovenBanner)
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "oven",
	Short:         "oven runs a single child process inside a Windows sandbox",
	Long:          "oven isolates a child process onto its own desktop, constrains its CPU and memory usage via a job object, and reports its captured output and exit status as JSON.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute parses os.Args and runs whichever subcommand matched.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "oven: %v\n", err)
		os.Exit(1)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print the oven banner before a run")
}

// exitWith terminates the process with code; cobra's Run signature has no
// return value, so subcommands that need a specific process exit code
// funnel through this instead of returning from Run.
func exitWith(code int) {
	os.Exit(code)
}

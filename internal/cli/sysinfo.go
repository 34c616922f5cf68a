package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nehonix-labs/oven/internal/diagnostics"
)

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Print a snapshot of the host oven is running on",
	Run: func(cmd *cobra.Command, args []string) {
		snapshot, err := diagnostics.Host()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			exitWith(1)
			return
		}
		data, _ := json.MarshalIndent(snapshot, "", "  ")
		fmt.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(sysinfoCmd)
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nehonix-labs/oven/internal/diagnostics"
)

var (
	watchDuration int
	watchInterval float64
)

var watchCmd = &cobra.Command{
	Use:   "watch [pid]",
	Short: "Sample a process's CPU and memory usage",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pid, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			exitWith(1)
			return
		}

		diagnostics.WatchChild(uint32(pid),
			time.Duration(watchDuration)*time.Second,
			time.Duration(watchInterval*float64(time.Second)),
			func(s diagnostics.ChildSample) {
				data, _ := json.Marshal(s)
				fmt.Println(string(data))
			})
	},
}

func init() {
	watchCmd.Flags().IntVarP(&watchDuration, "duration", "d", 10, "sampling duration in seconds")
	watchCmd.Flags().Float64VarP(&watchInterval, "interval", "i", 1.0, "sampling interval in seconds")
	rootCmd.AddCommand(watchCmd)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/output"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the active profile name",
	Args:  cobra.NoArgs,
	Run:   runCurrent,
}

func runCurrent(cmd *cobra.Command, args []string) {
	a := newApp()

	name, ok := a.reg.Active()
	if flagJSON {
		output.JSON(map[string]any{"active": name, "set": ok}, nil, nil)
		return
	}

	if !ok {
		fmt.Println("none")
		return
	}
	fmt.Println(name)
}

func init() {
	rootCmd.AddCommand(currentCmd)
}

package cmd

import (
	"fmt"

	"github.com/bookplay-cli/bookplay/activity/custom"
	"github.com/bookplay-cli/bookplay/icon"
	"github.com/bookplay-cli/bookplay/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

// runCmd validates a local Lua activity script for development and debugging.
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Validate a local Lua activity script",
	Long: `Initialize the Lua 5.1 virtual machine to execute a specified script and check it
satisfies the activity contract: start, stop and activityRequirements functions.`,
	Args:    cobra.ExactArgs(1),
	Example: "  bookplay run ./quiz.lua",
	Run: func(cmd *cobra.Command, args []string) {
		sourcePath := args[0]

		handleErr(custom.Validate(sourcePath))
		fmt.Printf("%s activity %q satisfies the contract\n", icon.Get(icon.Success), util.FileStem(sourcePath))
	},
}

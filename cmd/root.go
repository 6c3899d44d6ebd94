// Package cmd implements the command-line interface for bookplay.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bookplay-cli/bookplay/color"
	"github.com/bookplay-cli/bookplay/constant"
	"github.com/bookplay-cli/bookplay/history"
	"github.com/bookplay-cli/bookplay/icon"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/bookplay-cli/bookplay/style"
	"github.com/bookplay-cli/bookplay/util"
	"github.com/bookplay-cli/bookplay/version"
	"github.com/bookplay-cli/bookplay/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")
	rootCmd.Flags().BoolP("continue", "c", false, "Resume the most recently read book")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Persist reading progress to the localized history")
	lo.Must0(viper.BindPFlag(key.HistorySaveProgress, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.PersistentFlags().StringP("backend", "B", "", "Media backend to use (mpv, null)")
	lo.Must0(viper.BindPFlag(key.PlayerMediaBackend, rootCmd.PersistentFlags().Lookup("backend")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the bookplay application.
var rootCmd = &cobra.Command{
	Use:   constant.Bookplay,
	Short: "A narrated book player for the command line",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiBlue).Render("    - A narrated book player for the command line"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if lo.Must(cmd.Flags().GetBool("continue")) {
			saved, err := history.Get()
			handleErr(err)

			var latest *history.SavedReading
			for _, record := range saved {
				if latest == nil || record.UpdatedAt.After(latest.UpdatedAt) {
					latest = record
				}
			}
			if latest == nil {
				handleErr(fmt.Errorf("nothing to continue, the reading history is empty"))
			}

			readBook(latest.BookID)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// displayWidth is the usable output width: the terminal width when attached to
// one, a conservative default otherwise.
func displayWidth() int {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

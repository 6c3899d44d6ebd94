package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/color"
	"github.com/bookplay-cli/bookplay/config"
	"github.com/bookplay-cli/bookplay/history"
	"github.com/bookplay-cli/bookplay/icon"
	"github.com/bookplay-cli/bookplay/style"
	"github.com/bookplay-cli/bookplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(booksCmd)

	booksCmd.Flags().BoolP("raw", "r", false, "Print book identifiers only, one per line")

	booksCmd.SetOut(os.Stdout)
}

// booksCmd lists the library with per-book reading progress.
var booksCmd = &cobra.Command{
	Use:     "books",
	Aliases: []string{"library", "ls"},
	Short:   "List the books in the library",
	Run: func(cmd *cobra.Command, args []string) {
		names, err := book.Library()
		handleErr(err)
		sort.Strings(names)

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, name := range names {
				cmd.Println(name)
			}
			return
		}

		if len(names) == 0 {
			handleErr(book.ErrEmptyLibrary)
		}

		saved, err := history.Get()
		handleErr(err)

		byBook := make(map[string]*history.SavedReading)
		for _, record := range saved {
			byBook[record.BookID] = record
		}

		for _, name := range names {
			bk, err := book.Load(filepath.Join(config.LibraryDir(), name))
			if err != nil {
				cmd.Printf("%s %s %s\n", icon.Get(icon.Fail), name, style.Faint(err.Error()))
				continue
			}

			line := fmt.Sprintf("%s %s", icon.Get(icon.Book), style.Bold(bk.String()))
			if bk.Title != "" && bk.Title != name {
				line += " " + style.Faint("("+name+")")
			}
			line += " " + style.Faint(util.Quantify(len(bk.Pages), "page", "pages"))

			if record, read := byBook[name]; read {
				line += " " + style.Fg(color.HiGreen)(fmt.Sprintf("%.0f%%", record.Progress()*100))
			}

			cmd.Println(line)
		}
	},
}

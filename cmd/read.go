package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/bridge"
	"github.com/bookplay-cli/bookplay/color"
	"github.com/bookplay-cli/bookplay/config"
	"github.com/bookplay-cli/bookplay/icon"
	"github.com/bookplay-cli/bookplay/player"
	"github.com/bookplay-cli/bookplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("page", "p", 0, "Page number to open at (1-based)")
	readCmd.Flags().BoolP("paused", "P", false, "Open without starting narration")
}

var readCmd = &cobra.Command{
	Use:     "read <book>",
	Short:   "Read a book with narration and highlighting",
	Example: "bookplay read moon-book",
	Args:    cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		books, err := book.Library()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return books, cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := book.Lookup(args[0])
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("paused")) {
			readBookPaused(filepath.Base(dir))
			return
		}

		page := lo.Must(cmd.Flags().GetInt("page"))
		readBookAt(filepath.Base(dir), page)
	},
}

func readBook(id string) {
	readBookAt(id, 0)
}

func readBookPaused(id string) {
	p := openPlayer(id)
	defer func() {
		_ = p.Close()
	}()

	p.TogglePlayPause()
	readLoop(p)
}

func readBookAt(id string, page int) {
	p := openPlayer(id)
	defer func() {
		_ = p.Close()
	}()

	if page > 0 {
		p.ShowPage(page - 1)
	}
	readLoop(p)
}

func openPlayer(id string) *player.Player {
	handleErr(checkMediaBackend())

	p := player.New(bridge.Default())
	handleErr(p.OpenBook(filepath.Join(config.LibraryDir(), id)))
	return p
}

// readLoop drives the player from stdin until the reader quits. One command
// per line keeps the loop portable across terminals without raw mode.
func readLoop(p *player.Player) {
	fmt.Printf(
		"%s %s\n%s\n",
		icon.Get(icon.Book),
		style.Bold(p.Book().String()),
		style.Faint("n next, p prev, space pause, b back, g <page-id> jump, q quit"),
	)

	printPage(p)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "q" || input == "quit":
			return
		case input == "n" || input == "":
			p.HandleKey("right")
		case input == "p":
			p.HandleKey("left")
		case input == " " || input == "space":
			p.HandleKey(" ")
		case input == "b":
			p.HandleKey("b")
		case strings.HasPrefix(input, "g "):
			p.JumpToPageID(strings.TrimSpace(strings.TrimPrefix(input, "g ")))
		default:
			fmt.Println(style.Faint("unknown command: " + input))
			continue
		}

		printPage(p)
	}
}

func printPage(p *player.Player) {
	page := p.CurrentPage()
	if page == nil {
		return
	}

	header := fmt.Sprintf("[%d/%d] %s", page.Index+1, len(p.Book().Pages), page.String())
	if page.ActivityName != "" {
		header += " " + icon.Get(icon.Activity)
	}
	if len(page.AudioSegments()) > 0 {
		header += " " + icon.Get(icon.Audio)
	}

	fmt.Println(style.Fg(color.HiCyan)(header))
	if text := page.Text(); text != "" {
		fmt.Println(style.Truncate(displayWidth())(text))
	}
}

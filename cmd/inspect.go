package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/color"
	"github.com/bookplay-cli/bookplay/icon"
	"github.com/bookplay-cli/bookplay/style"
	"github.com/bookplay-cli/bookplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolP("json", "j", false, "Output as JSON")

	inspectCmd.SetOut(os.Stdout)
}

// inspectedPage is the serializable summary of one page for inspection output.
type inspectedPage struct {
	Index        int      `json:"index"`
	ID           string   `json:"id,omitempty"`
	Activity     string   `json:"activity,omitempty"`
	Video        bool     `json:"video,omitempty"`
	Music        string   `json:"music,omitempty"`
	Narration    []string `json:"narration,omitempty"`
	DurationSecs float64  `json:"duration_secs,omitempty"`
}

// inspectCmd shows the structure of a book without playing it.
var inspectCmd = &cobra.Command{
	Use:               "inspect <book>",
	Short:             "Show the pages, narration segments and activities of a book",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: readCmd.ValidArgsFunction,
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := book.Lookup(args[0])
		handleErr(err)

		bk, err := book.Load(dir)
		handleErr(err)

		pages := lo.Map(bk.Pages, func(page *book.Page, _ int) inspectedPage {
			inspected := inspectedPage{
				Index:    page.Index,
				ID:       page.ID,
				Activity: page.ActivityName,
				Video:    page.HasVideo(),
			}
			if track, ok := page.BackgroundAudio(); ok {
				inspected.Music = track
			}
			for _, segment := range page.AudioSegments() {
				inspected.Narration = append(inspected.Narration, segment.ID)
				inspected.DurationSecs += segment.Duration
			}
			return inspected
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(map[string]any{
				"id":    bk.ID,
				"title": bk.Title,
				"pages": pages,
			}))
			return
		}

		// Wrap at the terminal width so long titles and dense pages stay readable.
		fit := style.Truncate(displayWidth())

		cmd.Println(fit(fmt.Sprintf("%s %s %s", icon.Get(icon.Book), style.Bold(bk.String()), style.Faint(bk.ID))))

		for _, page := range pages {
			line := fmt.Sprintf("  %s", style.Fg(color.HiCyan)(fmt.Sprintf("[%d]", page.Index+1)))
			if page.ID != "" {
				line += " " + page.ID
			}
			if len(page.Narration) > 0 {
				line += fmt.Sprintf(" %s %s, %.1fs", icon.Get(icon.Audio), util.Quantify(len(page.Narration), "segment", "segments"), page.DurationSecs)
			}
			if page.Activity != "" {
				line += fmt.Sprintf(" %s %s", icon.Get(icon.Activity), page.Activity)
			}
			if page.Video {
				line += " " + style.Faint("video")
			}
			if page.Music != "" {
				line += " " + style.Faint("music: "+page.Music)
			}
			cmd.Println(fit(line))
		}
	},
}

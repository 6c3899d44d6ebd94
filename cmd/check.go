package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/bookplay-cli/bookplay/color"
	"github.com/bookplay-cli/bookplay/icon"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/bookplay-cli/bookplay/media"
	"github.com/bookplay-cli/bookplay/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

// checkMediaBackend verifies the availability of required system dependencies.
// The null backend is clock-driven and needs nothing from the host.
func checkMediaBackend() error {
	if viper.GetString(key.PlayerMediaBackend) == media.BackendNull {
		return nil
	}

	if _, err := exec.LookPath("mpv"); err != nil {
		printMissingDependencyError("mpv")
		return fmt.Errorf("dependency mpv is not installed")
	}
	return nil
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install mpv"
	case "linux":
		installCmd = "sudo apt install mpv" // Generic, maybe check distro
	case "windows":
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Orange).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

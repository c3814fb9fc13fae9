package app

import (
	"fmt"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/log"
)

// openedMsg reports the result of handing a file to the desktop opener.
type openedMsg struct {
	path string
	err  error
}

// Opener starts the program that shows a file. The default uses the
// platform's desktop opener and does not wait for it to exit.
type Opener func(path string) error

// SystemOpener runs open, xdg-open or start depending on the platform.
func SystemOpener(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openFileCmd(open Opener, path string) tea.Cmd {
	return func() tea.Msg {
		err := open(path)
		if err != nil {
			log.ErrorErr(log.CatUI, "open failed", err, "path", path)
		}
		return openedMsg{path: path, err: err}
	}
}

package authflow

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openBrowser opens url in the user's default web browser on Linux, macOS,
// or Windows. The command is started and not waited on; a failure to launch
// is returned but a failure inside the browser is not observable.
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

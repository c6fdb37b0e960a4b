// Package clipboard copies analysis receipts to the system clipboard.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable means no clipboard tool was found.
var ErrUnavailable = errors.New("no clipboard tool available")

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// command returns the clipboard writer for goos, or nil.
func command(goos string) []string {
	switch goos {
	case "darwin":
		if _, err := lookPath("pbcopy"); err == nil {
			return []string{"pbcopy"}
		}
	case "windows":
		return []string{"cmd", "/c", "clip"}
	default:
		if _, err := lookPath("wl-copy"); err == nil {
			return []string{"wl-copy"}
		}
		if _, err := lookPath("xclip"); err == nil {
			return []string{"xclip", "-selection", "clipboard"}
		}
		if _, err := lookPath("xsel"); err == nil {
			return []string{"xsel", "--clipboard", "--input"}
		}
	}
	return nil
}

// Write copies text to the system clipboard.
func Write(text string) error {
	args := command(runtime.GOOS)
	if args == nil {
		return ErrUnavailable
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// Available reports whether Write can work on this system.
func Available() bool {
	return command(runtime.GOOS) != nil
}

// Package terminal provides TTY detection and capability helpers. It
// centralises all "is this a terminal?" logic so commands can make
// consistent decisions about colour, output format and whether the
// interactive conflict strategy is allowed to prompt.
package terminal

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// Info holds the resolved terminal state for the current process.
// Create one at startup via Detect() and pass it down.
type Info struct {
	// IsTerminal is true when stdout is connected to a TTY.
	IsTerminal bool
	// StderrIsTerminal is true when stderr is connected to a TTY.
	StderrIsTerminal bool
	// ColorEnabled is true when ANSI colours should be emitted.
	ColorEnabled bool
	// ForceJSON is true when --json was explicitly passed.
	ForceJSON bool
}

// Detect inspects the environment and returns a populated Info.
//
//	noColor   – true when --no-color was passed (or NO_COLOR env is set)
//	forceJSON – true when --json was passed
func Detect(noColor, forceJSON bool) Info {
	stdoutFd := int(os.Stdout.Fd())
	stderrFd := int(os.Stderr.Fd())

	isTTY := term.IsTerminal(stdoutFd)
	stderrTTY := term.IsTerminal(stderrFd)

	// Honour the NO_COLOR convention (https://no-color.org/).
	envNoColor := os.Getenv("NO_COLOR") != ""

	return Info{
		IsTerminal:       isTTY,
		StderrIsTerminal: stderrTTY,
		ColorEnabled:     isTTY && !noColor && !envNoColor,
		ForceJSON:        forceJSON,
	}
}

// CanPrompt reports whether interactive prompts may be shown: stdin and
// stdout must both be TTYs and the terminal must have capabilities. The
// interactive conflict strategy refuses to run when this is false.
func (i Info) CanPrompt() bool {
	return i.IsTerminal && term.IsTerminal(int(os.Stdin.Fd())) && !IsDumb()
}

// IsDumb returns true when the terminal is known to have no capabilities
// (e.g. TERM=dumb or running inside Emacs).
func IsDumb() bool {
	t := strings.ToLower(os.Getenv("TERM"))
	return t == "dumb" || t == ""
}

// IsCI returns true when a well-known CI environment variable is set.
func IsCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "JENKINS_URL", "GITLAB_CI", "CIRCLECI", "TRAVIS"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

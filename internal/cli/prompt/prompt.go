// Package prompt wraps promptui for the interactive parts of the CLI.
package prompt

import (
	"errors"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/marmos91/opencode-sdk/internal/logger"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("input required but stdin is not a terminal")

// IsAborted reports whether err means the user interrupted the prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, ErrAborted)
}

// Interactive reports whether prompts can be shown.
var Interactive = func() bool {
	return logger.IsTerminal(os.Stdin)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

func run(p *promptui.Prompt) (string, error) {
	if !Interactive() {
		return "", ErrNotInteractive
	}
	result, err := p.Run()
	return result, wrapError(err)
}

// ABOUTME: Confirmation prompts for destructive commands
// ABOUTME: Asks y/N on a terminal and refuses outright when stdin is not one
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	promptInput io.Reader = os.Stdin
	interactive           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// confirm returns nil when the action may go ahead. --confirm skips the prompt.
func confirm(out io.Writer, action string, force bool) error {
	if force {
		return nil
	}
	if !interactive() {
		return fmt.Errorf("refusing to %s without --confirm", action)
	}

	_, _ = fmt.Fprintf(out, "This will %s. Continue? [y/N] ", action)
	answer, err := bufio.NewReader(promptInput).ReadString('\n')
	if err != nil && answer == "" {
		return fmt.Errorf("aborted")
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("aborted")
}

// Package prompts provides interactive confirmation gates. Components take a
// Confirmer so they stay testable without a terminal.
package prompts

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirmer answers a yes/no question. Implementations must default to no.
type Confirmer func(prompt string) bool

// Confirm asks the user on the terminal. Anything other than an explicit
// "y"/"yes" - including a read error - means no.
func Confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "⚠ %s\n", prompt)
	fmt.Fprint(os.Stderr, "Are you sure? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// Always skips the gate; wired up by the --yes flag.
func Always(string) bool {
	return true
}

package main

import (
	"os"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/commands"
)

func main() {
	// Commands exit with their own codes; an error here means cobra rejected
	// the usage (unknown command, bad flags).
	if err := commands.Execute(); err != nil {
		os.Exit(clierrors.ExitInvalidArguments)
	}
}

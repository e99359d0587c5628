package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandTree(t *testing.T) {
	registered := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range []string{
		"create", "switch", "list", "current", "verify", "delete", "launch", "refresh", "version",
	} {
		assert.True(t, registered[name], "command %q must be registered", name)
	}
}

func TestGlobalFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"profiles-root", "json", "yes", "verbose"} {
		assert.NotNil(t, flags.Lookup(name), "flag --%s must exist", name)
	}
}

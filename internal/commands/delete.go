package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/output"
	"github.com/mzhubr/claude-profiles/internal/prompts"
	"github.com/mzhubr/claude-profiles/internal/registry"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a saved profile",
	Long: `Remove a profile's snapshot directory and its launch sandbox. When the
deleted profile was active, the active marker is cleared; the live
credential file itself is left untouched.`,
	Args: cobra.ExactArgs(1),
	Run:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) {
	name := args[0]
	if err := registry.ValidateName(name); err != nil {
		clierrors.ExitWithCode(clierrors.ExitInvalidArguments, err.Error())
	}

	a := newApp()

	if !flagYes {
		prompt := fmt.Sprintf("this will delete profile %q, its snapshot, and its sandbox", name)
		if !prompts.Confirm(prompt) {
			clierrors.ExitWithCode(clierrors.ExitAborted, "deletion cancelled")
		}
	}

	if err := a.reg.Delete(name); err != nil {
		if errors.Is(err, registry.ErrProfileNotFound) {
			clierrors.ExitWithError(err, a.knownProfilesHint())
		}
		clierrors.ExitWithError(err, "")
	}

	if flagJSON {
		output.JSON(map[string]string{"deleted": name}, nil, nil)
		return
	}
	output.Success(fmt.Sprintf("Deleted profile %q", name))
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

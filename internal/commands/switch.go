package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/output"
	"github.com/mzhubr/claude-profiles/internal/registry"
	"github.com/mzhubr/claude-profiles/internal/switcher"
)

var switchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Point the live credentials at a saved profile",
	Long: `Overwrite the host's live credential file with a saved profile's snapshot
and mark that profile active.

If the live credentials still belong to the currently-active profile, they
are saved back into its snapshot first, so in-place token refreshes are not
lost. Switching onto an expired profile asks for confirmation.

Note: switching while other host sessions are running is racy - they share
the live credential file. Use 'launch' for concurrent multi-account work.`,
	Args: cobra.ExactArgs(1),
	Run:  runSwitch,
}

func runSwitch(cmd *cobra.Command, args []string) {
	name := args[0]
	if err := registry.ValidateName(name); err != nil {
		clierrors.ExitWithCode(clierrors.ExitInvalidArguments, err.Error())
	}

	a := newApp()
	result, err := a.coord.Switch(name)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrProfileNotFound):
			clierrors.ExitWithError(err, a.knownProfilesHint())
		case errors.Is(err, switcher.ErrAborted):
			clierrors.ExitWithError(err, "re-run with --yes to switch anyway, or 'claude-profiles refresh "+name+"' to renew the token first")
		default:
			clierrors.ExitWithError(err, "")
		}
	}

	if flagJSON {
		output.JSON(result, result.Warnings, nil)
		return
	}

	for _, warning := range result.Warnings {
		output.Warning(warning)
	}
	if result.SavedBackTo != "" {
		fmt.Printf("  saved live credentials back to profile %q\n", result.SavedBackTo)
	}
	output.Success(fmt.Sprintf("Switched to profile %q (fingerprint %s)", result.Name, result.Fingerprint))
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

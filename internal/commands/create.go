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

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Snapshot the live credentials as a named profile",
	Long: `Snapshot the host's live credentials under a profile name and mark that
profile active. Re-running create for an existing name overwrites its
snapshot with the current live credentials.`,
	Args: cobra.ExactArgs(1),
	Run:  runCreate,
}

func runCreate(cmd *cobra.Command, args []string) {
	name := args[0]
	if err := registry.ValidateName(name); err != nil {
		clierrors.ExitWithCode(clierrors.ExitInvalidArguments, err.Error())
	}

	a := newApp()
	result, err := a.coord.Create(name)
	if err != nil {
		if errors.Is(err, switcher.ErrNoLiveCredentials) {
			clierrors.ExitWithError(err, fmt.Sprintf("authenticate with the host first: run '%s' and log in", a.cfg.HostCommand))
		}
		clierrors.ExitWithError(err, "")
	}

	if flagJSON {
		output.JSON(result, nil, nil)
		return
	}

	output.Success(fmt.Sprintf("Saved profile %q (fingerprint %s, %s)", result.Name, result.Fingerprint, result.Subscription))
	if result.HasExpiry {
		if result.HoursRemaining < 0 {
			output.Warning(fmt.Sprintf("saved credentials expired %.1f hours ago", -result.HoursRemaining))
		} else {
			fmt.Printf("  token expires in %.1f hours\n", result.HoursRemaining)
		}
	}
	fmt.Printf("  active profile is now %q\n", result.Name)
}

func init() {
	rootCmd.AddCommand(createCmd)
}

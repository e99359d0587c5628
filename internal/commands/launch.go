package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/output"
	"github.com/mzhubr/claude-profiles/internal/registry"
)

var launchCmd = &cobra.Command{
	Use:   "launch <name> [-- host-args...]",
	Short: "Spawn an isolated session for a profile",
	Long: `Spawn a host session inside the profile's private sandbox home. The
session's credentials live in the sandbox, never in the shared live file,
so any number of isolated sessions can run concurrently under different
accounts. Arguments after -- are passed to the host command.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runLaunch,
}

func runLaunch(cmd *cobra.Command, args []string) {
	name := args[0]
	if err := registry.ValidateName(name); err != nil {
		clierrors.ExitWithCode(clierrors.ExitInvalidArguments, err.Error())
	}

	a := newApp()
	result, err := a.launcher.Launch(name, args[1:]...)
	if err != nil {
		if errors.Is(err, registry.ErrProfileNotFound) {
			clierrors.ExitWithError(err, a.knownProfilesHint())
		}
		clierrors.ExitWithError(err, "")
	}

	if flagJSON {
		output.JSON(result, nil, nil)
		return
	}

	output.Success(fmt.Sprintf("Launched %s for profile %q (pid %d)", result.Command, result.Name, result.PID))
	fmt.Printf("  sandbox: %s\n", result.SandboxDir)
	fmt.Printf("  session: %s\n", result.SessionID)
}

func init() {
	rootCmd.AddCommand(launchCmd)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/output"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare live credentials against the active profile's snapshot",
	Long: `Diagnostic comparison of the live credential file with the snapshot of the
profile named in the active marker: fingerprints, refresh-token identity,
and expiry state. Nothing is modified.`,
	Args: cobra.NoArgs,
	Run:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) {
	a := newApp()

	result, err := a.coord.Verify()
	if err != nil {
		clierrors.ExitWithError(err, "")
	}

	if flagJSON {
		output.JSON(result, result.Findings, nil)
		return
	}

	if result.HasActive {
		fmt.Printf("active profile:       %s\n", result.Active)
	} else {
		fmt.Println("active profile:       none")
	}
	fmt.Printf("live fingerprint:     %s\n", result.LiveFingerprint)
	fmt.Printf("snapshot fingerprint: %s\n", output.Dash(result.SnapshotFingerprint))
	fmt.Printf("live identity:        %s\n", output.Dash(result.LiveIdentity))
	fmt.Printf("snapshot identity:    %s\n", output.Dash(result.SnapshotIdentity))
	fmt.Printf("live token status:    %s", result.LiveStatus)
	if result.LiveStatus != "unknown" {
		fmt.Printf(" (%.1f hours remaining)", result.HoursRemaining)
	}
	fmt.Println()
	if result.TokenSubject != "" {
		fmt.Printf("token subject:        %s\n", result.TokenSubject)
	}

	for _, finding := range result.Findings {
		output.Warning(finding)
	}
	if result.InSync {
		output.Success("live credentials match the active profile's snapshot")
	}
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

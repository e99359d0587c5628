package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/expiry"
	"github.com/mzhubr/claude-profiles/internal/output"
	"github.com/mzhubr/claude-profiles/internal/registry"
)

var flagRefreshTimeout time.Duration

var refreshCmd = &cobra.Command{
	Use:   "refresh [name]",
	Short: "Renew a credential's token pair at the OAuth endpoint",
	Long: `Exchange the stored refresh token for a fresh access/refresh pair and
write it back in place. Without an argument the live credential file is
refreshed; with a profile name, that profile's snapshot is.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) {
	a := newApp()

	path := a.cfg.LiveCredentialsPath
	target := "live credentials"
	if len(args) == 1 {
		name := args[0]
		if err := registry.ValidateName(name); err != nil {
			clierrors.ExitWithCode(clierrors.ExitInvalidArguments, err.Error())
		}
		if !a.reg.Exists(name) {
			clierrors.ExitWithError(fmt.Errorf("%w: %q", registry.ErrProfileNotFound, name), a.knownProfilesHint())
		}
		path = a.reg.SnapshotPath(name)
		target = fmt.Sprintf("profile %q", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagRefreshTimeout)
	defer cancel()

	rec, err := a.refresh.RefreshFile(ctx, path)
	if err != nil {
		clierrors.ExitWithError(err, "if the refresh token was revoked, log in with the host again and re-run 'claude-profiles create'")
	}

	if flagJSON {
		output.JSON(map[string]any{
			"target":     target,
			"identity":   rec.Identity(),
			"expires_at": rec.ExpiresAt,
		}, nil, nil)
		return
	}

	output.Success(fmt.Sprintf("Refreshed %s", target))
	if exp, ok := rec.Expiry(); ok {
		fmt.Printf("  token expires in %.1f hours\n", expiry.HoursRemaining(exp, time.Now().UnixMilli()))
	}
}

func init() {
	refreshCmd.Flags().DurationVar(&flagRefreshTimeout, "timeout", 30*time.Second, "Token endpoint request timeout")
	rootCmd.AddCommand(refreshCmd)
}

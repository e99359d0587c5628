package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/expiry"
	"github.com/mzhubr/claude-profiles/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles with expiry state",
	Args:  cobra.NoArgs,
	Run:   runList,
}

// profileRow is one profile's listing.
type profileRow struct {
	Name           string `json:"name"`
	Active         bool   `json:"active"`
	Status         string `json:"status"`
	HasExpiry      bool   `json:"has_expiry"`
	HoursRemaining string `json:"hours_remaining,omitempty"`
	Subscription   string `json:"subscription"`
	Fingerprint    string `json:"fingerprint"`
}

func runList(cmd *cobra.Command, args []string) {
	a := newApp()

	names, err := a.reg.List()
	if err != nil {
		clierrors.ExitWithError(err, "")
	}

	active, _ := a.reg.Active()
	nowMs := a.coord.Now().UnixMilli()

	rows := make([]profileRow, 0, len(names))
	for _, name := range names {
		row := profileRow{
			Name:         name,
			Active:       name == active,
			Status:       string(expiry.StatusUnknown),
			Subscription: "unknown",
			Fingerprint:  a.store.Fingerprint(a.reg.SnapshotPath(name)),
		}
		if rec, ok := a.store.Read(a.reg.SnapshotPath(name)); ok {
			row.Subscription = rec.Subscription()
			if exp, ok := rec.Expiry(); ok {
				row.HasExpiry = true
				row.Status = string(expiry.Classify(exp, nowMs))
				row.HoursRemaining = fmt.Sprintf("%.1f", expiry.HoursRemaining(exp, nowMs))
			}
		}
		rows = append(rows, row)
	}

	if flagJSON {
		output.JSON(rows, nil, nil)
		return
	}

	if len(rows) == 0 {
		fmt.Println("No profiles saved. Run 'claude-profiles create <name>' to save the current login.")
		return
	}

	table := output.NewTable(os.Stdout)
	table.Header("NAME", "ACTIVE", "STATUS", "EXPIRES(H)", "PLAN", "FINGERPRINT")
	for _, row := range rows {
		marker := ""
		if row.Active {
			marker = "*"
		}
		table.Row(row.Name, marker, row.Status, output.Dash(row.HoursRemaining), row.Subscription, row.Fingerprint)
	}
	if err := table.Flush(); err != nil {
		clierrors.ExitWithError(err, "")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}

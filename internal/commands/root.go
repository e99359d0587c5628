// Package commands wires the cobra command tree. Each command builds its
// components from the startup Config and reports failures through the
// clierrors exit-code taxonomy.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mzhubr/claude-profiles/internal/clierrors"
	"github.com/mzhubr/claude-profiles/internal/config"
	"github.com/mzhubr/claude-profiles/internal/credstore"
	"github.com/mzhubr/claude-profiles/internal/launcher"
	"github.com/mzhubr/claude-profiles/internal/logging"
	"github.com/mzhubr/claude-profiles/internal/prompts"
	"github.com/mzhubr/claude-profiles/internal/refresher"
	"github.com/mzhubr/claude-profiles/internal/registry"
	"github.com/mzhubr/claude-profiles/internal/switcher"
)

var (
	// Global flags
	flagProfilesRoot string
	flagJSON         bool
	flagYes          bool
	flagVerbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claude-profiles",
	Short: "Manage multiple credential profiles for the Claude CLI",
	Long: `claude-profiles saves, switches, and isolates login credentials for the
Claude CLI, so one machine can hold several accounts.

Two modes are available:
  switch  - repoint the shared live credential file at a saved profile.
            Convenient, but racy while other host sessions are running.
  launch  - spawn a session inside a private sandbox home. Safe to run
            concurrently; the shared credential file is never touched.`,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProfilesRoot, "profiles-root", "", "Profiles root directory (or use CLAUDE_PROFILES_PROFILES_ROOT env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
}

// app bundles the components commands work with.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *credstore.Store
	reg      *registry.Registry
	coord    *switcher.Coordinator
	launcher *launcher.Launcher
	refresh  *refresher.Refresher
}

// newApp loads configuration and constructs every component. Called once per
// command invocation; the config never changes afterwards.
func newApp() *app {
	cfg, err := config.Load()
	if err != nil {
		clierrors.ExitWithCode(clierrors.ExitInvalidArguments, err.Error())
	}
	if flagProfilesRoot != "" {
		cfg.ProfilesRoot = flagProfilesRoot
	}

	level := cfg.Logging.Level
	if flagVerbose {
		level = "debug"
	}
	log := logging.New(level, cfg.Logging.Format)

	store := credstore.New(log)
	reg := registry.New(cfg.ProfilesRoot, store, log)
	coord := switcher.New(cfg, store, reg, log)
	if flagYes {
		coord.Confirm = prompts.Always
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		reg:      reg,
		coord:    coord,
		launcher: launcher.New(cfg, store, reg, log),
		refresh:  refresher.New(cfg, store, log),
	}
}

// knownProfilesHint lists valid names for not-found remediation messages.
func (a *app) knownProfilesHint() string {
	names, err := a.reg.List()
	if err != nil || len(names) == 0 {
		return "no profiles saved yet; run 'claude-profiles create <name>' first"
	}
	hint := "saved profiles:"
	for _, name := range names {
		hint += " " + name
	}
	return hint
}

// Package launcher materializes a self-contained home directory for a
// profile and spawns an independent host session inside it. The sandbox
// sidesteps the shared live credential file entirely, so concurrently
// launched sessions can never race each other's credentials.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mzhubr/claude-profiles/internal/config"
	"github.com/mzhubr/claude-profiles/internal/credstore"
	"github.com/mzhubr/claude-profiles/internal/registry"
)

// Environment variables set in spawned sessions.
const (
	// EnvProfile identifies which profile a spawned session runs under.
	EnvProfile = "CLAUDE_PROFILE"

	// EnvSession carries a unique ID per launch, for distinguishing multiple
	// sessions of the same profile.
	EnvSession = "CLAUDE_PROFILE_SESSION"
)

// Starter begins a prepared command. Injected so tests never spawn anything.
type Starter func(cmd *exec.Cmd) error

// Launcher spawns isolated host sessions.
type Launcher struct {
	cfg   *config.Config
	store *credstore.Store
	reg   *registry.Registry
	log   *logrus.Logger

	// Start is fire-and-forget: the launcher never waits on the child or
	// propagates its exit status.
	Start Starter
}

// New creates a Launcher.
func New(cfg *config.Config, store *credstore.Store, reg *registry.Registry, log *logrus.Logger) *Launcher {
	return &Launcher{
		cfg:   cfg,
		store: store,
		reg:   reg,
		log:   log,
		Start: startDetached,
	}
}

// LaunchResult reports a spawned session.
type LaunchResult struct {
	Name       string `json:"name"`
	SandboxDir string `json:"sandbox_dir"`
	SessionID  string `json:"session_id"`
	Command    string `json:"command"`
	PID        int    `json:"pid,omitempty"`
}

// Launch prepares the profile's sandbox and spawns a host session in it.
// The sandbox is created once and reused on later launches; its credential
// copy and the profile mirror are refreshed from the snapshot every time.
// The shared live credential file is never touched.
func (l *Launcher) Launch(name string, extraArgs ...string) (*LaunchResult, error) {
	snapshot := l.reg.SnapshotPath(name)
	if _, ok := l.store.Read(snapshot); !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrProfileNotFound, name)
	}

	sandbox := l.reg.SandboxDir(name)
	sandboxConfig := filepath.Join(sandbox, ".claude")
	if err := os.MkdirAll(sandboxConfig, 0o700); err != nil {
		return nil, fmt.Errorf("creating sandbox directory: %w", err)
	}

	if err := l.store.Copy(snapshot, l.reg.MirrorPath(name)); err != nil {
		return nil, fmt.Errorf("refreshing profile mirror: %w", err)
	}
	if err := l.store.Copy(snapshot, filepath.Join(sandboxConfig, ".credentials.json")); err != nil {
		return nil, fmt.Errorf("copying credentials into sandbox: %w", err)
	}

	if err := l.copySettings(sandboxConfig); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	cmd := exec.Command(l.cfg.HostCommand, extraArgs...)
	cmd.Dir = sandbox
	cmd.Env = sandboxEnv(os.Environ(), sandbox, name, sessionID)

	if err := l.Start(cmd); err != nil {
		return nil, fmt.Errorf("spawning %s: %w", l.cfg.HostCommand, err)
	}

	result := &LaunchResult{
		Name:       name,
		SandboxDir: sandbox,
		SessionID:  sessionID,
		Command:    l.cfg.HostCommand,
	}
	if cmd.Process != nil {
		result.PID = cmd.Process.Pid
	}

	l.log.WithFields(logrus.Fields{
		"profile": name,
		"sandbox": sandbox,
		"session": sessionID,
	}).Info("launched isolated session")
	return result, nil
}

// copySettings mirrors the host's optional settings file into the sandbox.
// A missing settings file is not an error.
func (l *Launcher) copySettings(sandboxConfig string) error {
	if l.cfg.SettingsPath == "" {
		return nil
	}
	if _, err := os.Stat(l.cfg.SettingsPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking settings file: %w", err)
	}
	if err := l.store.Copy(l.cfg.SettingsPath, filepath.Join(sandboxConfig, "settings.json")); err != nil {
		return fmt.Errorf("copying settings into sandbox: %w", err)
	}
	return nil
}

// sandboxEnv rewrites the inherited environment so the child resolves its
// home inside the sandbox on every platform.
func sandboxEnv(base []string, sandbox, name, sessionID string) []string {
	env := make([]string, 0, len(base)+4)
	for _, kv := range base {
		key := strings.SplitN(kv, "=", 2)[0]
		if key == "HOME" || key == "USERPROFILE" {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"HOME="+sandbox,
		"USERPROFILE="+sandbox,
		EnvProfile+"="+name,
		EnvSession+"="+sessionID,
	)
}

// startDetached starts the command and releases the process handle; the
// session outlives this tool.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

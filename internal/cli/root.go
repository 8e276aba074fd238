// Package cli implements the vaults command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/app"
	"github.com/vault-cli/vaults/internal/clipboard"
	"github.com/vault-cli/vaults/internal/config"
	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/process"
)

// env is the state shared by every command of one invocation
type env struct {
	version string
	cfgFile string
	verbose bool

	cfg *config.Config
	app *app.App

	// test hooks
	runner process.Runner
	board  clipboard.Board
}

// Option customizes the command tree
type Option func(*env)

// WithRunner makes every backend invocation go through r
func WithRunner(r process.Runner) Option {
	return func(e *env) { e.runner = r }
}

// WithClipboard replaces the system clipboard
func WithClipboard(b clipboard.Board) Option {
	return func(e *env) { e.board = b }
}

// NewRootCommand builds the vaults command tree
func NewRootCommand(version string, opts ...Option) *cobra.Command {
	cmd, _ := newRoot(version, opts...)
	return cmd
}

func newRoot(version string, opts ...Option) (*cobra.Command, *env) {
	e := &env{version: version, board: clipboard.System}
	for _, opt := range opts {
		opt(e)
	}

	rootCmd := &cobra.Command{
		Use:   "vaults",
		Short: "Manage CryFS and gocryptfs vaults",
		Long: `Vaults keeps a list of encrypted directories and mounts them with the
tool that created them. Supported backends are CryFS and gocryptfs; both must
be installed separately.

Passwords are only held in memory while a backend runs and are never written
to disk.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/vaults/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newBackendsCmd(e),
		newListCmd(e),
		newCreateCmd(e),
		newAddCmd(e),
		newChangeCmd(e),
		newRemoveCmd(e),
		newOpenCmd(e),
		newCloseCmd(e),
		newHistoryCmd(e),
		newPathCmd(e),
		newDoctorCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newMigrateCmd(e),
		newConfigCmd(e),
	)

	return rootCmd, e
}

// Execute runs the command tree with ctx
func Execute(ctx context.Context, version string, args []string, opts ...Option) error {
	cmd, e := newRoot(version, opts...)
	defer e.close()

	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (e *env) loadConfig() error {
	if e.cfgFile == "" {
		e.cfgFile = config.DefaultPath()
	}

	cfg, err := config.LoadConfig(e.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if e.verbose {
		cfg.LogLevel = "debug"
	}

	e.cfg = cfg
	return nil
}

// application builds the App on first use so config commands never touch the registry
func (e *env) application(cmd *cobra.Command) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}

	a, err := app.New(cmd.Context(), e.cfg, app.Options{
		Version:    e.version,
		ConfigPath: e.cfgFile,
		Runner:     e.runner,
		LogOutput:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	e.app = a
	return a, nil
}

func (e *env) close() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}

// resolveVault finds a vault by identity or name
func resolveVault(a *app.App, idOrName string) (domain.VaultID, domain.VaultConfig, error) {
	return a.Registry().Lookup(idOrName)
}

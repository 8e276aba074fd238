package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vault-cli/vaults/internal/app"
	"github.com/vault-cli/vaults/internal/domain"
)

func newDoctorCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Perform health checks",
		Long: `Perform health checks on the vault manager setup.

This command checks:
- Settings and registry file permissions
- Registry readability
- Installed backends
- Directories and custom binaries of every vault

Example:
  vaults doctor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.application(cmd)
			if err != nil {
				return err
			}
			return runDoctor(cmd, e.cfgFile, a)
		},
	}
}

type doctorReport struct {
	out      io.Writer
	issues   int
	warnings int
}

func (r *doctorReport) ok(format string, args ...interface{}) {
	fmt.Fprintf(r.out, "   ✅ "+format+"\n", args...)
}

func (r *doctorReport) warn(format string, args ...interface{}) {
	fmt.Fprintf(r.out, "   ⚠️  "+format+"\n", args...)
	r.warnings++
}

func (r *doctorReport) fail(format string, args ...interface{}) {
	fmt.Fprintf(r.out, "   ❌ "+format+"\n", args...)
	r.issues++
}

func (r *doctorReport) section(title string) {
	fmt.Fprintf(r.out, "\n%s\n", title)
}

// checkFilePermissions reports a private file as secure, a group/world readable one as an issue
func (r *doctorReport) checkFilePermissions(label, path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		r.ok("%s not found (nothing stored yet)", label)
		return
	}
	if err != nil {
		r.fail("Cannot check %s: %v", label, err)
		return
	}

	perm := info.Mode().Perm()
	switch {
	case perm == 0o600:
		r.ok("%s permissions: %o (secure)", label, perm)
	case perm&0o077 != 0:
		r.fail("%s permissions: %o (too permissive, should be 0600)", label, perm)
		fmt.Fprintf(r.out, "      Fix with: chmod 600 %s\n", path)
	default:
		r.warn("%s permissions: %o (acceptable but 0600 recommended)", label, perm)
	}
}

func runDoctor(cmd *cobra.Command, cfgFile string, a *app.App) error {
	cfg := a.Config()
	r := &doctorReport{out: cmd.OutOrStdout()}

	fmt.Fprintln(r.out, "Vaults Health Check")
	fmt.Fprintln(r.out, "===================")

	r.section("1. Settings")
	r.checkFilePermissions("Config file", cfgFile)
	if dir := filepath.Dir(cfg.RegistryPath); dir != "" {
		if info, err := os.Stat(dir); err == nil {
			if perm := info.Mode().Perm(); perm&0o077 == 0 {
				r.ok("Data directory permissions: %o (secure)", perm)
			} else {
				r.warn("Data directory permissions: %o (consider 0700)", perm)
			}
		}
	}

	r.section("2. Vault Registry")
	r.checkFilePermissions("Registry file", cfg.RegistryPath)
	if err := a.RegistryError(); err != nil {
		r.fail("Registry cannot be loaded: %v", err)
	} else {
		r.ok("Registry loaded: %d vault(s)", a.Registry().Len())
	}

	r.section("3. Backends")
	available := a.RefreshBackends(cmd.Context())
	for _, kind := range domain.AllBackendKinds() {
		if a.Backends().IsAvailable(kind) {
			r.ok("%s is installed", kind)
		} else {
			r.warn("%s is not installed or does not run", kind)
		}
	}
	if len(available) == 0 {
		r.fail("No backend available: install cryfs or gocryptfs")
	}

	r.section("4. Vaults")
	entries := sortedVaults(a.Registry().Map())
	if len(entries) == 0 {
		r.ok("No vaults registered")
	}
	for _, v := range entries {
		checkVault(r, a, v)
	}

	r.section("5. Operation History")
	if h := a.History(); h != nil {
		r.checkFilePermissions("History database", h.Path())
	} else if cfg.RecordHistory {
		r.warn("History is enabled but the database could not be opened")
	} else {
		r.ok("History recording is disabled")
	}

	fmt.Fprintln(r.out, "\n"+strings.Repeat("=", 40))
	if r.issues == 0 && r.warnings == 0 {
		fmt.Fprintln(r.out, "✅ All checks passed!")
	} else {
		if r.issues > 0 {
			fmt.Fprintf(r.out, "❌ Found %d issues that should be fixed\n", r.issues)
		}
		if r.warnings > 0 {
			fmt.Fprintf(r.out, "⚠️  Found %d warnings for consideration\n", r.warnings)
		}
	}

	return nil
}

func checkVault(r *doctorReport, a *app.App, v vaultEntry) {
	label := fmt.Sprintf("%s (%s)", v.Name, v.Backend)

	if err := app.ValidateConfig(v.VaultConfig); err != nil {
		r.fail("%s: %v", label, err)
	}
	if !a.Backends().IsAvailable(v.Backend) && !(v.UseCustomBinary != nil && *v.UseCustomBinary) {
		r.warn("%s: backend not installed, the vault cannot be opened", label)
	}

	if info, err := os.Stat(v.EncryptedDataDirectory); err != nil {
		r.fail("%s: encrypted data directory missing: %s", label, v.EncryptedDataDirectory)
	} else if !info.IsDir() {
		r.fail("%s: encrypted data path is not a directory: %s", label, v.EncryptedDataDirectory)
	} else {
		r.ok("%s: encrypted data directory present", label)
	}

	if info, err := os.Stat(v.MountDirectory); err != nil {
		r.warn("%s: mount directory missing: %s", label, v.MountDirectory)
	} else if !info.IsDir() {
		r.fail("%s: mount path is not a directory: %s", label, v.MountDirectory)
	}

	if v.UseCustomBinary != nil && *v.UseCustomBinary && v.CustomBinaryPath != nil {
		info, err := os.Stat(*v.CustomBinaryPath)
		switch {
		case err != nil:
			r.fail("%s: custom binary not found: %s", label, *v.CustomBinaryPath)
		case info.Mode().Perm()&0o111 == 0:
			r.fail("%s: custom binary is not executable: %s", label, *v.CustomBinaryPath)
		default:
			r.ok("%s: custom binary %s", label, *v.CustomBinaryPath)
		}
	}
}

package backend

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/process"
)

func testConfig(kind domain.BackendKind) domain.VaultConfig {
	return domain.VaultConfig{
		Name:                   "Work",
		Backend:                kind,
		EncryptedDataDirectory: "/home/u/.enc/work",
		MountDirectory:         "/home/u/Vaults/work",
	}
}

func TestFor_AllKinds(t *testing.T) {
	for _, kind := range domain.AllBackendKinds() {
		d, err := For(kind, newFakeRunner())
		require.NoError(t, err)
		assert.Equal(t, kind, d.Kind())
	}

	_, err := For(domain.BackendKind(99), newFakeRunner())
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	r := newFakeRunner()
	assert.True(t, (&Gocryptfs{runner: r}).Probe(ctx))
	assert.Equal(t, process.Command{Name: "gocryptfs", Args: []string{"--version"}}, r.last())

	assert.True(t, (&CryFS{runner: r}).Probe(ctx))
	assert.Equal(t, process.Command{Name: "cryfs", Args: []string{"--version"}}, r.last())

	r = newFakeRunner().exit("cryfs", 1)
	assert.False(t, (&CryFS{runner: r}).Probe(ctx))

	r = newFakeRunner()
	r.errs["gocryptfs"] = &process.SpawnError{Name: "gocryptfs", Err: exec.ErrNotFound}
	assert.False(t, (&Gocryptfs{runner: r}).Probe(ctx))
}

func TestGocryptfs_Protocol(t *testing.T) {
	ctx := context.Background()
	r := newFakeRunner()
	g := &Gocryptfs{runner: r}
	cfg := testConfig(domain.Gocryptfs)

	require.NoError(t, g.Init(ctx, cfg, []byte("hunter2")))
	assert.Equal(t, "gocryptfs", r.last().Name)
	assert.Equal(t, []string{"--init", "-q", "--", "/home/u/.enc/work"}, r.last().Args)
	assert.Equal(t, "hunter2\nhunter2\n", string(r.last().Stdin))

	require.NoError(t, g.Open(ctx, cfg, []byte("hunter2")))
	assert.Equal(t, "gocryptfs", r.last().Name)
	assert.Equal(t, []string{"-q", "--", "/home/u/.enc/work", "/home/u/Vaults/work"}, r.last().Args)
	assert.Equal(t, "hunter2\n", string(r.last().Stdin))

	require.NoError(t, g.Close(ctx, cfg))
	assert.Equal(t, process.Command{Name: "fusermount", Args: []string{"-u", "/home/u/Vaults/work"}}, r.last())
}

func TestCryFS_Protocol(t *testing.T) {
	ctx := context.Background()
	r := newFakeRunner()
	c := &CryFS{runner: r}
	cfg := testConfig(domain.CryFS)

	require.NoError(t, c.Init(ctx, cfg, []byte("pw")))
	assert.Empty(t, r.calls)

	require.NoError(t, c.Open(ctx, cfg, []byte("pw")))
	assert.Equal(t, "cryfs", r.last().Name)
	assert.Equal(t, []string{"/home/u/.enc/work", "/home/u/Vaults/work"}, r.last().Args)
	assert.Equal(t, []string{"CRYFS_FRONTEND=noninteractive"}, r.last().Env)
	assert.Equal(t, "pw\n", string(r.last().Stdin))

	require.NoError(t, c.Close(ctx, cfg))
	assert.Equal(t, process.Command{Name: "cryfs-unmount", Args: []string{"/home/u/Vaults/work"}}, r.last())
}

func TestCustomBinary(t *testing.T) {
	ctx := context.Background()
	r := newFakeRunner()
	cfg := testConfig(domain.Gocryptfs)
	cfg.UseCustomBinary = domain.Bool(true)
	cfg.CustomBinaryPath = domain.String("/opt/gocryptfs/bin/gocryptfs")

	require.NoError(t, (&Gocryptfs{runner: r}).Open(ctx, cfg, []byte("pw")))
	assert.Equal(t, "/opt/gocryptfs/bin/gocryptfs", r.last().Name)

	cfg.UseCustomBinary = domain.Bool(false)
	require.NoError(t, (&Gocryptfs{runner: r}).Open(ctx, cfg, []byte("pw")))
	assert.Equal(t, "gocryptfs", r.last().Name)
}

func TestGocryptfs_OpenWrongPassword(t *testing.T) {
	r := newFakeRunner().exit("gocryptfs", 12)

	err := (&Gocryptfs{runner: r}).Open(context.Background(), testConfig(domain.Gocryptfs), []byte("nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &Error{Kind: WrongPassword}))

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, domain.Gocryptfs, be.Backend)
	assert.Equal(t, 12, be.ExitCode)
}

func TestCryFS_OpenIntegrityViolation(t *testing.T) {
	r := newFakeRunner().exit("cryfs", 25)

	err := (&CryFS{runner: r}).Open(context.Background(), testConfig(domain.CryFS), []byte("pw"))
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, IntegrityViolation, kind)
}

func TestClose_KilledBySignal(t *testing.T) {
	ctx := context.Background()

	r := newFakeRunner().signal("fusermount")
	err := (&Gocryptfs{runner: r}).Close(ctx, testConfig(domain.Gocryptfs))
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, Generic, kind)

	r = newFakeRunner().signal("cryfs-unmount")
	err = (&CryFS{runner: r}).Close(ctx, testConfig(domain.CryFS))
	kind, ok = KindOf(err)
	require.True(t, ok)
	assert.Equal(t, Unspecified, kind)
}

func TestOpen_SpawnErrorPropagates(t *testing.T) {
	r := newFakeRunner()
	r.errs["gocryptfs"] = &process.SpawnError{Name: "gocryptfs", Err: exec.ErrNotFound}

	err := (&Gocryptfs{runner: r}).Open(context.Background(), testConfig(domain.Gocryptfs), []byte("pw"))
	var spawnErr *process.SpawnError
	assert.True(t, errors.As(err, &spawnErr))
	_, ok := KindOf(err)
	assert.False(t, ok)
}

// zeroingRunner checks that the stdin buffer is wiped after the run returns
type zeroingRunner struct{ stdin []byte }

func (z *zeroingRunner) Run(_ context.Context, cmd process.Command) (*process.Outcome, error) {
	z.stdin = cmd.Stdin
	return &process.Outcome{HasExitCode: true}, nil
}

func TestPasswordBufferZeroed(t *testing.T) {
	z := &zeroingRunner{}
	require.NoError(t, (&Gocryptfs{runner: z}).Init(context.Background(), testConfig(domain.Gocryptfs), []byte("secret")))

	require.Len(t, z.stdin, len("secret\nsecret\n"))
	for _, b := range z.stdin {
		assert.Equal(t, byte(0), b)
	}
}

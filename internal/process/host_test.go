package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapForHost(t *testing.T) {
	cmd := Command{
		Name: "cryfs",
		Args: []string{"/enc", "/mnt"},
		Env:  []string{"CRYFS_FRONTEND=noninteractive"},
	}

	name, args, env := wrapForHost(HostSpawnNever, cmd)
	assert.Equal(t, "cryfs", name)
	assert.Equal(t, []string{"/enc", "/mnt"}, args)
	assert.Equal(t, []string{"CRYFS_FRONTEND=noninteractive"}, env)

	name, args, env = wrapForHost(HostSpawnAlways, cmd)
	assert.Equal(t, "flatpak-spawn", name)
	assert.Equal(t, []string{"--host", "--env=CRYFS_FRONTEND=noninteractive", "cryfs", "/enc", "/mnt"}, args)
	assert.Nil(t, env)
}

func TestWrapForHost_Auto(t *testing.T) {
	orig := sandboxed
	t.Cleanup(func() { sandboxed = orig })

	sandboxed = func() bool { return true }
	name, _, _ := wrapForHost(HostSpawnAuto, Command{Name: "gocryptfs"})
	assert.Equal(t, "flatpak-spawn", name)

	sandboxed = func() bool { return false }
	name, _, _ = wrapForHost(HostSpawnAuto, Command{Name: "gocryptfs"})
	assert.Equal(t, "gocryptfs", name)
}

func TestParseHostSpawnMode(t *testing.T) {
	for in, want := range map[string]HostSpawnMode{
		"":       HostSpawnAuto,
		"AUTO":   HostSpawnAuto,
		"always": HostSpawnAlways,
		"never":  HostSpawnNever,
	} {
		got, err := ParseHostSpawnMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseHostSpawnMode("sometimes")
	assert.Error(t, err)
}

package process

import (
	"fmt"
	"os"
	"strings"
)

// HostSpawnMode controls whether commands are routed through flatpak-spawn
type HostSpawnMode string

// Host-spawn modes
const (
	HostSpawnAuto   HostSpawnMode = "auto"
	HostSpawnAlways HostSpawnMode = "always"
	HostSpawnNever  HostSpawnMode = "never"
)

// ParseHostSpawnMode validates a mode name; empty means auto
func ParseHostSpawnMode(s string) (HostSpawnMode, error) {
	switch HostSpawnMode(strings.ToLower(s)) {
	case "", HostSpawnAuto:
		return HostSpawnAuto, nil
	case HostSpawnAlways:
		return HostSpawnAlways, nil
	case HostSpawnNever:
		return HostSpawnNever, nil
	default:
		return "", fmt.Errorf("invalid host spawn mode: %s (valid: auto, always, never)", s)
	}
}

const (
	hostSpawnBinary = "flatpak-spawn"
	sandboxMarker   = "/.flatpak-info"
)

// sandboxed is swapped in tests
var sandboxed = func() bool {
	_, err := os.Stat(sandboxMarker)
	return err == nil
}

// wrapForHost returns the argv and extra environment that actually get executed.
// Inside a sandbox the child environment is passed as --env flags instead.
func wrapForHost(mode HostSpawnMode, cmd Command) (string, []string, []string) {
	useHost := mode == HostSpawnAlways || (mode != HostSpawnNever && sandboxed())
	if !useHost {
		return cmd.Name, cmd.Args, cmd.Env
	}

	args := make([]string, 0, len(cmd.Args)+len(cmd.Env)+2)
	args = append(args, "--host")
	for _, kv := range cmd.Env {
		args = append(args, "--env="+kv)
	}
	args = append(args, cmd.Name)
	args = append(args, cmd.Args...)
	return hostSpawnBinary, args, nil
}

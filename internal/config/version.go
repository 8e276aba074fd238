package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed major.minor.patch application version
type Version struct {
	Major, Minor, Patch uint64
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses "X.Y.Z" with an optional "-suffix". Anything else is rejected.
func ParseVersion(s string) (Version, bool) {
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, false
	}

	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, false
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}

// userDirectoriesMigrated reports whether version already uses the new settings layout (0.11+)
func userDirectoriesMigrated(version string) bool {
	v, ok := ParseVersion(version)
	if !ok {
		return false
	}
	return v.Major > 0 || v.Minor >= 11
}

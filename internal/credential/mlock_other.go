//go:build !linux && !darwin

package credential

func lockMemory(_ []byte)   {}
func unlockMemory(_ []byte) {}

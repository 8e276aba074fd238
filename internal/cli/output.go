package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vault-cli/vaults/internal/domain"
)

// MaxOutputSize is the maximum allowed size for output to prevent memory exhaustion
const MaxOutputSize = 10 * 1024 * 1024 // 10MB

// writeString writes a string to the writer with error checking and size limits
func writeString(w io.Writer, s string) error {
	if len(s) > MaxOutputSize {
		return fmt.Errorf("output size %d exceeds maximum allowed size %d",
			len(s), MaxOutputSize)
	}

	n, err := fmt.Fprint(w, s)
	if err != nil {
		return fmt.Errorf("failed to write output (wrote %d bytes): %w", n, err)
	}

	// Ensure the output is flushed if it's a file
	if f, ok := w.(interface{ Flush() error }); ok {
		if flushErr := f.Flush(); flushErr != nil {
			return fmt.Errorf("failed to flush output: %w", flushErr)
		}
	}

	return nil
}

// writeOutput is a helper function to write formatted output with error checking and size limits
func writeOutput(w io.Writer, format string, args ...interface{}) error {
	output := fmt.Sprintf(format, args...)
	return writeString(w, output)
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeString(w, string(data)+"\n")
}

// vaultEntry is one vault as shown by list and path
type vaultEntry struct {
	ID domain.VaultID `json:"id"`
	domain.VaultConfig
}

// sortedVaults returns the vaults ordered by name, then identity
func sortedVaults(m domain.VaultMap) []vaultEntry {
	entries := make([]vaultEntry, 0, len(m))
	for id, cfg := range m {
		entries = append(entries, vaultEntry{ID: id, VaultConfig: cfg})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a != b {
			return a < b
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return entries
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

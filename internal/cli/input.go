package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/vault-cli/vaults/internal/credential"
)

// ErrPasswordMismatch is returned when the confirmation differs from the password
var ErrPasswordMismatch = errors.New("passwords do not match")

// PromptPassword prompts for a password without echoing to terminal
func PromptPassword(w io.Writer, prompt string) ([]byte, error) {
	fmt.Fprint(w, prompt)

	// Get file descriptor for stdin
	fd := int(syscall.Stdin)

	// Read password without echo
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(w) // Print newline after password input

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// PromptPasswordConfirm prompts for a password and confirmation
func PromptPasswordConfirm(w io.Writer, prompt string) ([]byte, error) {
	password, err := PromptPassword(w, prompt)
	if err != nil {
		return nil, err
	}

	confirm, err := PromptPassword(w, "Confirm password: ")
	if err != nil {
		credential.Zero(password)
		return nil, err
	}
	defer credential.Zero(confirm)

	if !bytes.Equal(password, confirm) {
		credential.Zero(password)
		return nil, ErrPasswordMismatch
	}

	return password, nil
}

// ReadPasswordLine reads one password line from r, without the line ending
func ReadPasswordLine(r io.Reader) ([]byte, error) {
	reader := bufio.NewReader(r)
	line, err := reader.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		credential.Zero(line)
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	password := bytes.TrimRight(line, "\r\n")
	out := append([]byte(nil), password...)
	credential.Zero(line)
	return out, nil
}

// PromptInput prompts for regular input
func PromptInput(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)

	reader := bufio.NewReader(r)
	input, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(input), nil
}

// PromptConfirm prompts for yes/no confirmation
func PromptConfirm(r io.Reader, w io.Writer, prompt string, defaultYes bool) (bool, error) {
	var suffix string
	if defaultYes {
		suffix = " [Y/n]: "
	} else {
		suffix = " [y/N]: "
	}

	input, err := PromptInput(r, w, prompt+suffix)
	if err != nil {
		return false, err
	}

	input = strings.ToLower(strings.TrimSpace(input))

	if input == "" {
		return defaultYes, nil
	}

	return input == "y" || input == "yes", nil
}

// isTerminal reports whether stdin is an interactive terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

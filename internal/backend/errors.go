package backend

import (
	"errors"
	"fmt"

	"github.com/vault-cli/vaults/internal/domain"
)

// ErrorKind classifies a failed backend invocation
type ErrorKind int

// Error kinds shared by both backends
const (
	WrongPassword ErrorKind = iota + 1
	EmptyPassword
)

// CryFS error kinds
const (
	Unspecified ErrorKind = iota + 100
	InvalidArguments
	FilesystemTooNew
	FilesystemTooOld
	WrongCipher
	BaseDirInaccessible
	MountDirInaccessible
	BaseDirInsideMountDir
	InvalidFilesystem
	FilesystemIDChanged
	EncryptionKeyChanged
	IntegritySetupMismatch
	SingleClientFilesystem
	IntegrityViolationPreviousRun
	IntegrityViolation
)

// Gocryptfs error kinds
const (
	Generic ErrorKind = iota + 200
	EncryptedDirInvalid
	EncryptedDirNotEmpty
	MountDirNotEmpty
	CannotReadConfig
	CannotWriteConfig
	FsckError
)

var cryfsExitCodes = map[int]ErrorKind{
	1:  Unspecified,
	10: InvalidArguments,
	11: WrongPassword,
	12: EmptyPassword,
	13: FilesystemTooNew,
	14: FilesystemTooOld,
	15: WrongCipher,
	16: BaseDirInaccessible,
	17: MountDirInaccessible,
	18: BaseDirInsideMountDir,
	19: InvalidFilesystem,
	20: FilesystemIDChanged,
	21: EncryptionKeyChanged,
	22: IntegritySetupMismatch,
	23: SingleClientFilesystem,
	24: IntegrityViolationPreviousRun,
	25: IntegrityViolation,
}

var gocryptfsExitCodes = map[int]ErrorKind{
	6:  EncryptedDirInvalid,
	7:  EncryptedDirNotEmpty,
	10: MountDirNotEmpty,
	12: WrongPassword,
	22: EmptyPassword,
	23: CannotReadConfig,
	24: CannotWriteConfig,
	26: FsckError,
}

var kindInfo = map[ErrorKind]struct {
	name    string
	message string
}{
	WrongPassword:                 {"WrongPassword", "The password is wrong."},
	EmptyPassword:                 {"EmptyPassword", "The password is empty."},
	Unspecified:                   {"Unspecified", "An unknown error occurred."},
	InvalidArguments:              {"InvalidArguments", "Invalid arguments were given to CryFS."},
	FilesystemTooNew:              {"FilesystemTooNew", "The vault was created by a newer CryFS version. Please update CryFS."},
	FilesystemTooOld:              {"FilesystemTooOld", "The vault was created by an older CryFS version. Please run cryfs manually to migrate it."},
	WrongCipher:                   {"WrongCipher", "The vault uses a different cipher than the one requested."},
	BaseDirInaccessible:           {"BaseDirInaccessible", "The encrypted data directory does not exist or is not accessible."},
	MountDirInaccessible:          {"MountDirInaccessible", "The mount directory does not exist or is not accessible."},
	BaseDirInsideMountDir:         {"BaseDirInsideMountDir", "The encrypted data directory must not be inside the mount directory."},
	InvalidFilesystem:             {"InvalidFilesystem", "The encrypted data directory does not contain a valid CryFS filesystem."},
	FilesystemIDChanged:           {"FilesystemIdChanged", "The filesystem id in the config file differs from the last time this vault was opened. This can be an attack."},
	EncryptionKeyChanged:          {"EncryptionKeyChanged", "The encryption key differs from the last time this vault was opened. This can be an attack."},
	IntegritySetupMismatch:        {"IntegritySetupMismatch", "The integrity setting of the vault differs from the requested one."},
	SingleClientFilesystem:        {"SingleClientFilesystem", "The vault is in single-client mode and can only be used from the client that created it."},
	IntegrityViolationPreviousRun: {"IntegrityViolationPreviousRun", "A previous run detected an integrity violation. Remove the integrity state file to continue."},
	IntegrityViolation:            {"IntegrityViolation", "An integrity violation was detected and the vault was unmounted."},
	Generic:                       {"Generic", "An unknown error occurred."},
	EncryptedDirInvalid:           {"EncryptedDirInvalid", "The encrypted data directory is invalid."},
	EncryptedDirNotEmpty:          {"EncryptedDirNotEmpty", "The encrypted data directory is not empty."},
	MountDirNotEmpty:              {"MountDirNotEmpty", "The mount directory is not empty."},
	CannotReadConfig:              {"CannotReadConfig", "The gocryptfs config file could not be read."},
	CannotWriteConfig:             {"CannotWriteConfig", "The gocryptfs config file could not be written."},
	FsckError:                     {"FsckError", "The filesystem check found errors."},
}

// String returns the kind's identifier
func (k ErrorKind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Message returns a human-readable description for display
func (k ErrorKind) Message() string {
	if info, ok := kindInfo[k]; ok {
		return info.message
	}
	return "An unknown error occurred."
}

// Fallback returns the kind used for unknown exit codes of a backend
func Fallback(kind domain.BackendKind) ErrorKind {
	if kind == domain.CryFS {
		return Unspecified
	}
	return Generic
}

// Translate maps a backend's exit status to an error kind.
// hasCode is false when the process ended without a numeric exit code.
func Translate(kind domain.BackendKind, code int, hasCode bool) ErrorKind {
	if !hasCode {
		return Fallback(kind)
	}

	var table map[int]ErrorKind
	switch kind {
	case domain.CryFS:
		table = cryfsExitCodes
	case domain.Gocryptfs:
		table = gocryptfsExitCodes
	}

	if k, ok := table[code]; ok {
		return k
	}
	return Fallback(kind)
}

// Error is a failed backend invocation
type Error struct {
	Backend     domain.BackendKind
	Kind        ErrorKind
	ExitCode    int
	HasExitCode bool
	Stderr      string
}

func (e *Error) Error() string {
	switch {
	case e.HasExitCode:
		return fmt.Sprintf("%s failed with exit code %d: %s", e.Backend, e.ExitCode, e.Kind.Message())
	case e.Kind == EmptyPassword:
		return fmt.Sprintf("%s: %s", e.Backend, e.Kind.Message())
	default:
		return fmt.Sprintf("%s terminated abnormally: %s", e.Backend, e.Kind.Message())
	}
}

// Is matches another *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the error kind from err
func KindOf(err error) (ErrorKind, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

// IsPasswordError reports whether err was caused by a wrong or empty password
func IsPasswordError(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == WrongPassword || k == EmptyPassword)
}

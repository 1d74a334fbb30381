package mount

import (
	"errors"
	"os"
	"syscall"

	"ghostls/internal/fs"
	"ghostls/internal/logging"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")

	// ErrReadOnly indicates attempt to modify the mounted tree
	ErrReadOnly = errors.New("filesystem is read-only")
)

// Operations rejected by the read-only mount.
const (
	OpMkdir   = "mkdir"
	OpRemove  = "remove"
	OpRename  = "rename"
	OpSetattr = "setattr"
)

// readOnly builds the error returned by every mutating operation.
func readOnly(op, path string) error {
	return ToFuseError(fs.NewError(op, path, ErrReadOnly))
}

// ToFuseError converts listing and os errors to the errno FUSE expects.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	var fsErr *fs.Error
	if errors.As(err, &fsErr) {
		errLogger.Trace("Converting listing error to FUSE error: %v", fsErr)
	}

	switch {
	case errors.Is(err, ErrReadOnly):
		return syscall.EROFS
	case errors.Is(err, fs.ErrInvalidGhostDir):
		return syscall.ENOENT
	case errors.Is(err, fs.ErrNotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}

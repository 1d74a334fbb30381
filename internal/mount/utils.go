package mount

import (
	"os"

	"bazil.org/fuse"
)

func safeInt64ToUint64(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// direntType maps a file mode to the dirent type reported by ReadDirAll.
func direntType(mode os.FileMode) fuse.DirentType {
	switch {
	case mode&os.ModeDir != 0:
		return fuse.DT_Dir
	case mode&os.ModeSymlink != 0:
		return fuse.DT_Link
	default:
		return fuse.DT_File
	}
}

// readOnlyMode strips the write bits so permission checks match the mount.
func readOnlyMode(mode os.FileMode) os.FileMode {
	return mode &^ 0222
}

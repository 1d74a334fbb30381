//go:build !windows

package fs

import "os"

func isPlatformHidden(string, os.DirEntry) bool {
	return false
}

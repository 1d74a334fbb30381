//go:build windows

package fs

import (
	"os"
	"strings"
	"syscall"
)

// isPlatformHidden hides `_`-prefixed files, an old alternative to dotfiles,
// and files carrying the hidden attribute.
func isPlatformHidden(name string, entry os.DirEntry) bool {
	if strings.HasPrefix(name, "_") {
		return true
	}
	info, err := entry.Info()
	if err != nil {
		return false
	}
	attrs, ok := info.Sys().(*syscall.Win32FileAttributeData)
	return ok && attrs.FileAttributes&syscall.FILE_ATTRIBUTE_HIDDEN != 0
}

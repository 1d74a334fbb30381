package mount

import (
	fusefs "bazil.org/fuse/fs"
)

// Node represents a filesystem node (file or directory)
type Node interface {
	fusefs.Node
	fusefs.NodeSetattrer
}

// Directory represents a directory in the mounted tree, real or ghost
type Directory interface {
	Node
	fusefs.NodeStringLookuper
	fusefs.HandleReadDirAller
	fusefs.NodeMkdirer
	fusefs.NodeRemover
	fusefs.NodeRenamer
}

// FileInterface represents a passthrough file
type FileInterface interface {
	Node
	fusefs.NodeOpener
	fusefs.NodeFsyncer
	fusefs.NodeReadlinker
}

// FileHandleInterface represents an open file handle
type FileHandleInterface interface {
	fusefs.Handle
	fusefs.HandleReader
	fusefs.HandleReleaser
}

var (
	_ fusefs.FS           = (*GhostFS)(nil)
	_ Directory           = (*Dir)(nil)
	_ FileInterface       = (*File)(nil)
	_ FileHandleInterface = (*FileHandle)(nil)
)

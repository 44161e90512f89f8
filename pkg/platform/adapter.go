package platform

import (
	"io/fs"
	"runtime"
)

// Adapter hides the OS-specific parts of installing a tool.
type Adapter interface {
	// Name identifies the adapter, e.g. "posix" or "windows".
	Name() string
	// ShimPath returns the shim location for stem inside dir.
	ShimPath(dir, stem string) string
	// MakeShim creates a launcher at shimPath that runs target and returns
	// the path actually written.
	MakeShim(target, shimPath string) (string, error)
	// IsExecutable reports whether a regular file counts as runnable.
	IsExecutable(path string, info fs.FileInfo) bool
	// BinaryExtension is the conventional executable suffix, including the dot.
	BinaryExtension() string
}

// ForOS returns the adapter for a Go operating system name.
func ForOS(goos string) Adapter {
	if goos == OSWindows {
		return Windows{}
	}
	return Posix{}
}

// Current returns the adapter for the running OS.
func Current() Adapter {
	return ForOS(runtime.GOOS)
}

package platform

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Posix creates symlink shims and treats any file with an execute bit as runnable.
type Posix struct{}

func (Posix) Name() string { return "posix" }

func (Posix) ShimPath(dir, stem string) string {
	return filepath.Join(dir, stem)
}

func (Posix) MakeShim(target, shimPath string) (string, error) {
	if err := os.Symlink(target, shimPath); err != nil {
		return "", err
	}
	return shimPath, nil
}

func (Posix) IsExecutable(_ string, info fs.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

func (Posix) BinaryExtension() string { return "" }

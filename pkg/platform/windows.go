package platform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// batchTemplate forwards all arguments to the target.
const batchTemplate = "@echo off\r\ncall \"%s\" %%*\r\n"

// Windows creates .bat launcher shims and decides executability by extension.
type Windows struct{}

func (Windows) Name() string { return "windows" }

func (Windows) ShimPath(dir, stem string) string {
	return filepath.Join(dir, stem+".bat")
}

// MakeShim writes a batch file. The .bat extension is forced onto shimPath.
func (Windows) MakeShim(target, shimPath string) (string, error) {
	if !strings.EqualFold(filepath.Ext(shimPath), ".bat") {
		shimPath += ".bat"
	}
	content := fmt.Sprintf(batchTemplate, target)
	if err := os.WriteFile(shimPath, []byte(content), 0o644); err != nil {
		return "", err
	}
	return shimPath, nil
}

func (Windows) IsExecutable(path string, info fs.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exe", ".bat", ".cmd":
		return true
	default:
		return false
	}
}

func (Windows) BinaryExtension() string { return ".exe" }

package hooks

import (
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/manifest"
)

// DefaultScriptPath is where `frate init --with-hooks` places a template.
func DefaultScriptPath(hookType HookType) string {
	return filepath.Join("hooks", string(hookType)+".tengo")
}

// LoadFromManifest reads the scripts named in the manifest [hooks] table.
// Relative paths are resolved against projectRoot. A nil table yields an
// executor with no scripts.
func LoadFromManifest(projectRoot string, h *manifest.Hooks) (*TengoExecutor, error) {
	executor := NewTengoExecutor()
	if h == nil {
		return executor, nil
	}

	for hookType, script := range map[HookType]string{
		PostInstall:   h.PostInstall,
		PostUninstall: h.PostUninstall,
	} {
		if script == "" {
			continue
		}
		path := script
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectRoot, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s script %s: %w", pkgerrors.ErrHookLoad, hookType, script, err)
		}
		executor.AddScript(hookType, string(content))
	}
	return executor, nil
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostInstall:
		return `// Post-install hook
// Runs after a tool has been extracted and its shim created.
// Available variables:
// - toolName: string - name of the tool
// - toolVersion: string - locked version
// - toolDir: string - directory the archive was extracted to
// - executable: string - path of the located executable
// - shimPath: string - path of the shim
// - projectRoot: string - directory holding frate.toml
// Declare err := "message" to report a failure.

fmt := import("fmt")
fmt.println("installed ", toolName, " ", toolVersion)
`
	case PostUninstall:
		return `// Post-uninstall hook
// Runs after a tool directory and its shims have been removed.
// Available variables: toolName, toolDir, executable, projectRoot
// Declare err := "message" to report a failure.

fmt := import("fmt")
fmt.println("removed ", toolName)
`
	default:
		return ""
	}
}

package hooks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/hooks"
)

func TestTengoExecutor(t *testing.T) {
	ctx := context.Background()
	hc := hooks.HookContext{
		ToolName:    "just",
		Version:     "1.40.0",
		ToolDir:     "/project/.frate/bin/just",
		Executable:  "/project/.frate/bin/just/just",
		ShimPath:    "/project/.frate/shims/just",
		ProjectRoot: "/project",
		Vars: map[string]interface{}{
			"customVar": "customValue",
		},
	}

	t.Run("missing script is a no-op", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		assert.NoError(t, executor.Run(ctx, hooks.PostInstall, hc))
	})

	t.Run("empty script", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `// nothing to do`)
		assert.NoError(t, executor.Run(ctx, hooks.PostInstall, hc))
	})

	t.Run("runtime error", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `x := 1 / 0`)

		err := executor.Run(ctx, hooks.PostInstall, hc)
		require.Error(t, err)
		assert.ErrorIs(t, err, pkgerrors.ErrHookExecution)
	})

	t.Run("compile error", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `non_existent_function()`)

		err := executor.Run(ctx, hooks.PostInstall, hc)
		assert.ErrorIs(t, err, pkgerrors.ErrHookExecution)
	})

	t.Run("script reports string err", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostUninstall, `err := "cleanup failed for " + toolName`)

		err := executor.Run(ctx, hooks.PostUninstall, hc)
		require.Error(t, err)
		assert.ErrorIs(t, err, pkgerrors.ErrHookScript)
		assert.Contains(t, err.Error(), "cleanup failed for just")
	})

	t.Run("script reports error value", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `err := error("bad version " + toolVersion)`)

		err := executor.Run(ctx, hooks.PostInstall, hc)
		assert.ErrorIs(t, err, pkgerrors.ErrHookScript)
		assert.Contains(t, err.Error(), "bad version 1.40.0")
	})

	t.Run("empty err string is success", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `err := ""`)
		assert.NoError(t, executor.Run(ctx, hooks.PostInstall, hc))
	})

	t.Run("context variables are accessible", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `
			text := import("text")
			ok := toolName == "just" && toolVersion == "1.40.0" && customVar == "customValue"
			ok = ok && text.has_prefix(executable, toolDir)
			ok = ok && shimPath != "" && projectRoot == "/project"
			err := ok ? "" : "unexpected context"
		`)
		assert.NoError(t, executor.Run(ctx, hooks.PostInstall, hc))
	})

	t.Run("script can write files", func(t *testing.T) {
		marker := filepath.Join(t.TempDir(), "marker")
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `
			os := import("os")
			f := os.create(marker)
			f.write_string(toolName)
			f.close()
		`)
		hcWithMarker := hc
		hcWithMarker.Vars = map[string]interface{}{"marker": marker}

		require.NoError(t, executor.Run(ctx, hooks.PostInstall, hcWithMarker))
		data, err := os.ReadFile(marker)
		require.NoError(t, err)
		assert.Equal(t, "just", string(data))
	})

	t.Run("cancelled context", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		executor.AddScript(hooks.PostInstall, `for i := 0; true; i++ {}`)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := executor.Run(cancelled, hooks.PostInstall, hc)
		assert.ErrorIs(t, err, pkgerrors.ErrHookExecution)
	})

	t.Run("HasScript check", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		assert.False(t, executor.HasScript(hooks.PostInstall))

		executor.AddScript(hooks.PostInstall, "// test script")
		assert.True(t, executor.HasScript(hooks.PostInstall))
		assert.False(t, executor.HasScript(hooks.PostUninstall))
	})
}

func TestScriptModulesImportable(t *testing.T) {
	for _, name := range hooks.ScriptModules {
		t.Run(name, func(t *testing.T) {
			executor := hooks.NewTengoExecutor()
			executor.AddScript(hooks.PostInstall, `m := import("`+name+`")`)
			assert.NoError(t, executor.Run(context.Background(), hooks.PostInstall, hooks.HookContext{}))
		})
	}

	executor := hooks.NewTengoExecutor()
	executor.AddScript(hooks.PostInstall, `strings := import("strings")`)
	err := executor.Run(context.Background(), hooks.PostInstall, hooks.HookContext{})
	assert.ErrorIs(t, err, pkgerrors.ErrHookExecution)
}

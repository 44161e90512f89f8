package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
)

// ScriptModules are the tengo stdlib modules hook scripts may import.
var ScriptModules = []string{"fmt", "os", "text", "times"}

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Run executes the script for hookType. A missing script is not an error.
// A script signals failure by declaring err as a non-empty string or an error value.
func (e *TengoExecutor) Run(ctx context.Context, hookType HookType, hc HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap(ScriptModules...))

	globals := map[string]interface{}{
		"toolName":    hc.ToolName,
		"toolVersion": hc.Version,
		"toolDir":     hc.ToolDir,
		"executable":  hc.Executable,
		"shimPath":    hc.ShimPath,
		"projectRoot": hc.ProjectRoot,
	}
	for k, v := range hc.Vars {
		globals[k] = v
	}
	for name, value := range globals {
		if err := scriptInstance.Add(name, value); err != nil {
			return fmt.Errorf("failed to add variable '%s' to %s script: %w", name, hookType, err)
		}
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, pkgerrors.ErrHookExecution, err)
	}

	switch v := compiled.Get("err").Value().(type) {
	case error:
		return fmt.Errorf("%s: %w: %w", hookType, pkgerrors.ErrHookScript, v)
	case string:
		if v != "" {
			return fmt.Errorf("%s: %w: %s", hookType, pkgerrors.ErrHookScript, v)
		}
	}
	return nil
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}

package hooks

import "context"

//go:generate mockgen -destination=./mocks/runner.go -package=mocks . Runner

// HookType names the installer event a script is attached to.
type HookType string

const (
	PostInstall   HookType = "post-install"
	PostUninstall HookType = "post-uninstall"
)

// HookContext is the data exposed to a hook script as global variables.
type HookContext struct {
	ToolName    string
	Version     string
	ToolDir     string
	Executable  string
	ShimPath    string
	ProjectRoot string
	Vars        map[string]interface{}
}

// Runner runs the script registered for a hook type, if any.
type Runner interface {
	Run(ctx context.Context, hookType HookType, hc HookContext) error
}

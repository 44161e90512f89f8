package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath  = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse      = fmt.Errorf("failed to parse config")
	ErrConfigValidation = fmt.Errorf("invalid configuration")
	ErrConfigEncode     = fmt.Errorf("failed to encode config")
	ErrConfigDirectory  = fmt.Errorf("failed to create config directory")
	ErrConfigFileExists = fmt.Errorf("configuration file already exists")

	// Manifest and lockfile errors.
	ErrManifestNotFound    = fmt.Errorf("manifest not found")
	ErrManifestExists      = fmt.Errorf("manifest already exists")
	ErrManifestParse       = fmt.Errorf("failed to parse manifest")
	ErrManifestValidation  = fmt.Errorf("invalid manifest")
	ErrInvalidVersion      = fmt.Errorf("invalid version")
	ErrInvalidToolName     = fmt.Errorf("invalid tool name")
	ErrLockfileParse       = fmt.Errorf("failed to parse lockfile")
	ErrDependencyNotLocked = fmt.Errorf("dependency is not in the lockfile")

	// Registry and resolution errors.
	ErrNotFound        = fmt.Errorf("tool not found in registry")
	ErrVersionNotFound = fmt.Errorf("version not found for target")

	// Install pipeline errors.
	ErrDownload                = fmt.Errorf("download failed")
	ErrIntegrity               = fmt.Errorf("integrity check failed")
	ErrUnsupportedArchiveType  = fmt.Errorf("unsupported archive type")
	ErrBinaryNotFound          = fmt.Errorf("no executable found in archive")
	ErrFilesystem              = fmt.Errorf("filesystem operation failed")
	ErrShimCreation            = fmt.Errorf("failed to create shim")
	ErrPathTraversal           = fmt.Errorf("archive entry escapes destination")
	ErrNotInstalled            = fmt.Errorf("tool is not installed")
	ErrInvalidArchiveName      = fmt.Errorf("cannot derive archive name from url")
	ErrUnsupportedShimPlatform = fmt.Errorf("shims are not supported on this platform")

	// Cache errors.
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrCacheInfo      = fmt.Errorf("failed to get cache info")
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrNotFoundWithName reports a tool missing from the registry.
func ErrNotFoundWithName(name string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("%w: %s: %v", ErrNotFound, name, cause)
}

// ErrVersionNotFoundWithKey reports that none of the given release keys exist for a tool.
func ErrVersionNotFoundWithKey(name string, keys ...string) error {
	return fmt.Errorf("%w: %s has no release %v", ErrVersionNotFound, name, keys)
}

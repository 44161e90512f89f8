package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeSecure  = 0o640 // -rw-r-----
	FileModeExec    = 0o755 // -rwxr-xr-x

	DirModeDefault = 0o755 // drwxr-xr-x
	DirModeSecure  = 0o750 // drwxr-x---
	DirModePrivate = 0o700 // drwx------
)

const (
	// AppName is the name of the application used in global paths.
	AppName = "frate"

	// ManifestFileName is the per-project manifest.
	ManifestFileName = "frate.toml"
	// LockFileName is the per-project lockfile.
	LockFileName = "frate.lock"
	// StateDirName is the project-local directory holding installed tools and shims.
	StateDirName = ".frate"

	binDirName   = "bin"
	shimsDirName = "shims"
)

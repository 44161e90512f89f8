// Package platform maps the running host to a registry target triple and
// abstracts the OS-specific parts of shim creation and executable detection.
package platform

// Go operating system names.
const (
	OSWindows = "windows"
	OSLinux   = "linux"
	OSDarwin  = "darwin"
)

// Go architecture names.
const (
	ArchAMD64 = "amd64"
	Arch386   = "386"
	ArchARM64 = "arm64"
)

// Names used inside target triples.
const (
	tripleArchX8664   = "x86_64"
	tripleArchX86     = "x86"
	tripleArchAArch64 = "aarch64"
	tripleOSMacOS     = "macos"
)

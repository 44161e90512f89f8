package platform

import (
	"fmt"
	"runtime"
)

// Platform represents a host as Go names it.
type Platform struct {
	OS   string
	Arch string
}

// CurrentPlatform returns the running OS and architecture.
func CurrentPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// Triple returns the registry target triple of the platform.
func (p Platform) Triple() string {
	return TargetTriple(p.OS, p.Arch)
}

// TripleArch converts a Go architecture name to the name used in triples.
func TripleArch(goarch string) string {
	switch goarch {
	case ArchAMD64:
		return tripleArchX8664
	case Arch386:
		return tripleArchX86
	case ArchARM64:
		return tripleArchAArch64
	default:
		return goarch
	}
}

// TripleOS converts a Go operating system name to the name used in triples.
func TripleOS(goos string) string {
	if goos == OSDarwin {
		return tripleOSMacOS
	}
	return goos
}

// TargetTriple maps a Go OS/arch pair to the triple used as release key suffix
// in the registry. Unknown pairs fall back to "<arch>-unknown-<os>".
func TargetTriple(goos, goarch string) string {
	arch, os := TripleArch(goarch), TripleOS(goos)

	switch {
	case arch == tripleArchX8664 && os == OSLinux:
		return "x86_64-unknown-linux-gnu"
	case arch == tripleArchX86 && os == OSWindows:
		return "i686-pc-windows-msvc"
	case arch == tripleArchX8664 && os == OSWindows:
		return "x86_64-pc-windows-msvc"
	case arch == tripleArchAArch64 && os == OSLinux:
		return "aarch64-unknown-linux-gnu"
	case arch == tripleArchAArch64 && os == tripleOSMacOS:
		return "aarch64-apple-darwin"
	case arch == tripleArchX8664 && os == tripleOSMacOS:
		return "x86_64-apple-darwin"
	default:
		return fmt.Sprintf("%s-unknown-%s", arch, os)
	}
}

// HostTriple is the target triple of the running process.
func HostTriple() string {
	return CurrentPlatform().Triple()
}

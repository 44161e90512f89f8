package cache

// Info represents cache information.
type Info struct {
	Directory string
	TotalSize int64
	Files     int
}

// internal/mmap/mmap.go
package mmap

// File is a read-only view of a document on disk, backed by a memory
// mapping where the platform supports one. Platform-specific open/close
// logic lives in mmap_unix.go and mmap_windows.go.
type File struct {
	handle interface{} // platform handles; nil for an empty file, which is not mapped
	data   []byte
	size   int64
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Data returns the mapped contents. The slice is invalid after Close.
func (f *File) Data() []byte {
	return f.data
}

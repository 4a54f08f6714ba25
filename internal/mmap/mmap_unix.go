//go:build unix

// internal/mmap/mmap_unix.go
package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// Open maps path read-only. Empty files are returned unmapped.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := stat.Size()
	if size == 0 {
		// Can't mmap an empty file; there is nothing to map anyway.
		f.Close()
		return &File{size: 0}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{
		handle: f,
		data:   data,
		size:   size,
	}, nil
}

// Close unmaps and closes the file.
func (f *File) Close() error {
	var firstErr error

	if f.data != nil {
		if err := unix.Munmap(f.data); err != nil {
			firstErr = err
		}
		f.data = nil
	}

	if osf, ok := f.handle.(*os.File); ok && osf != nil {
		if err := osf.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		f.handle = nil
	}

	return firstErr
}

//go:build windows

// internal/mmap/mmap_windows.go
package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// winHandle stores Windows-specific handles for a read-only mapping.
type winHandle struct {
	file      *os.File
	mapHandle windows.Handle
}

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
		f.Close()
		return &File{size: 0}, nil
	}

	mapHandle, err := windows.CreateFileMapping(
		windows.Handle(f.Fd()),
		nil,
		windows.PAGE_READONLY,
		uint32(size>>32),
		uint32(size&0xFFFFFFFF),
		nil,
	)
	if err != nil {
		f.Close()
		return nil, err
	}

	addr, err := windows.MapViewOfFile(
		mapHandle,
		windows.FILE_MAP_READ,
		0, 0,
		uintptr(size),
	)
	if err != nil {
		windows.CloseHandle(mapHandle)
		f.Close()
		return nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	return &File{
		handle: &winHandle{file: f, mapHandle: mapHandle},
		data:   data,
		size:   size,
	}, nil
}

// Close unmaps and closes the file.
func (f *File) Close() error {
	var firstErr error

	h, ok := f.handle.(*winHandle)
	if !ok || h == nil {
		f.data = nil
		return nil
	}

	if f.data != nil {
		if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&f.data[0]))); err != nil {
			firstErr = err
		}
		f.data = nil
	}

	if h.mapHandle != 0 {
		if err := windows.CloseHandle(h.mapHandle); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := h.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	f.handle = nil

	return firstErr
}

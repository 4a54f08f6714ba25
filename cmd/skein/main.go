// cmd/skein/main.go
//
// Skein CLI - inspect a text document through the rope.
//
// Usage:
//
//	skein <file>                     print byte/char/line counts
//	skein <file> <start> <end>       print lines [start, end), zero-indexed
//
// The file is loaded through a read-only memory mapping; internal/mmap
// provides it on Unix and Windows only.
package main

import (
	"fmt"
	"os"
	"strconv"

	"skein/internal/mmap"
	"skein/pkg/rope"
)

func main() {
	if len(os.Args) != 2 && len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: skein <file> [start-line end-line]\n")
		os.Exit(2)
	}

	f, err := mmap.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r := rope.NewFromString(string(f.Data()))

	if len(os.Args) == 2 {
		fmt.Printf("bytes: %d\nchars: %d\nlines: %d\n", r.LenBytes(), r.LenChars(), r.LenLines())
		return
	}

	start, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start line: %v\n", err)
		os.Exit(2)
	}
	end, err := strconv.Atoi(os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end line: %v\n", err)
		os.Exit(2)
	}
	if start < 0 || start > end || end > r.LenLines() {
		fmt.Fprintf(os.Stderr, "Error: line range [%d, %d) out of bounds (%d lines)\n", start, end, r.LenLines())
		os.Exit(1)
	}

	slice := r.Slice(r.LineToChar(start), r.LineToChar(end))
	os.Stdout.WriteString(slice.String())
}

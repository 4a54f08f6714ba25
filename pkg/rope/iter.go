// pkg/rope/iter.go
package rope

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Iterators walk a snapshot of the tree. Each one retains its anchor node
// at construction, so edits made to the originating rope afterwards cannot
// disturb an iteration in progress.

// Chunks yields the rope's leaf chunks in order, clipped to the iterator's
// range. It drives every other iterator. Traversal keeps an explicit frame
// stack; tree depth is logarithmic, so the stack stays tiny.
type Chunks struct {
	stack     []chunkFrame
	offset    int // byte offset of the next unvisited leaf
	startByte int
	endByte   int
}

type chunkFrame struct {
	n *node
	i int
}

func newChunks(n *node, startChar, endChar int) *Chunks {
	n.retain()
	c := &Chunks{
		startByte: n.charToByte(startChar),
		endByte:   n.charToByte(endChar),
	}
	c.stack = append(c.stack, chunkFrame{n: n})
	return c
}

// Next returns the next non-empty chunk, or false when the range is
// exhausted.
func (c *Chunks) Next() (string, bool) {
	for len(c.stack) > 0 {
		fr := &c.stack[len(c.stack)-1]
		switch fr.n.kind {
		case nodeLeaf:
			start := c.offset
			end := start + fr.n.text.len()
			c.offset = end
			chunk := fr.n.text.buf
			c.stack = c.stack[:len(c.stack)-1]
			lo, hi := start, end
			if lo < c.startByte {
				lo = c.startByte
			}
			if hi > c.endByte {
				hi = c.endByte
			}
			if lo < hi {
				return string(chunk[lo-start : hi-start]), true
			}
			if start >= c.endByte {
				c.stack = c.stack[:0]
				return "", false
			}

		case nodeInternal:
			a := fr.n.children
			if fr.i >= a.count {
				c.stack = c.stack[:len(c.stack)-1]
				continue
			}
			child := a.nodes[fr.i]
			size := a.info[fr.i].Bytes
			fr.i++
			if c.offset+size <= c.startByte || c.offset >= c.endByte {
				c.offset += size
				continue
			}
			c.stack = append(c.stack, chunkFrame{n: child})

		default:
			c.stack = c.stack[:len(c.stack)-1]
		}
	}
	return "", false
}

// Bytes yields the rope's bytes in order.
type Bytes struct {
	chunks *Chunks
	cur    string
	i      int
}

func newBytes(n *node, startChar, endChar int) *Bytes {
	return &Bytes{chunks: newChunks(n, startChar, endChar)}
}

// Next returns the next byte, or false at the end of the range.
func (b *Bytes) Next() (byte, bool) {
	for b.i >= len(b.cur) {
		chunk, ok := b.chunks.Next()
		if !ok {
			return 0, false
		}
		b.cur, b.i = chunk, 0
	}
	v := b.cur[b.i]
	b.i++
	return v, true
}

// Chars yields the rope's scalar values in order.
type Chars struct {
	chunks *Chunks
	cur    string
	i      int
}

func newChars(n *node, startChar, endChar int) *Chars {
	return &Chars{chunks: newChunks(n, startChar, endChar)}
}

// Next returns the next scalar, or false at the end of the range.
func (c *Chars) Next() (rune, bool) {
	for c.i >= len(c.cur) {
		chunk, ok := c.chunks.Next()
		if !ok {
			return 0, false
		}
		c.cur, c.i = chunk, 0
	}
	r, sz := utf8.DecodeRuneInString(c.cur[c.i:])
	c.i += sz
	return r, true
}

// Graphemes yields the rope's extended grapheme clusters in order. Edits
// never leave a cluster spanning two leaves, so each chunk segments
// independently.
type Graphemes struct {
	chunks *Chunks
	rest   string
	state  int
}

func newGraphemes(n *node, startChar, endChar int) *Graphemes {
	return &Graphemes{chunks: newChunks(n, startChar, endChar), state: -1}
}

// Next returns the next cluster, or false at the end of the range.
func (g *Graphemes) Next() (string, bool) {
	if g.rest == "" {
		chunk, ok := g.chunks.Next()
		if !ok {
			return "", false
		}
		g.rest, g.state = chunk, -1
	}
	var cluster string
	cluster, g.rest, _, g.state = uniseg.FirstGraphemeClusterInString(g.rest, g.state)
	return cluster, true
}

// Lines yields the rope's lines as slices, one per line, including the
// final break-less line.
type Lines struct {
	s RopeSlice
	i int
}

func newLines(n *node, startChar, endChar int) *Lines {
	return &Lines{s: newSliceWithRange(n, startChar, endChar)}
}

// Next returns the next line, or false when all lines have been yielded.
func (l *Lines) Next() (RopeSlice, bool) {
	if l.i >= l.s.LenLines() {
		return RopeSlice{}, false
	}
	line := l.s.Line(l.i)
	l.i++
	return line, true
}

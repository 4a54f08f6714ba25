// pkg/rope/slice.go
package rope

import "fmt"

// RopeSlice is an immutable view into part of a rope. It anchors the
// deepest subtree that wholly contains its char range and keeps that
// subtree retained, so the view stays a consistent snapshot even if the
// rope it came from is edited afterwards.
type RopeSlice struct {
	node      *node
	startByte int
	endByte   int
	startChar int
	endChar   int
	startLine int
	endLine   int
}

// newSliceWithRange anchors a view of chars [start, end) under root.
func newSliceWithRange(root *node, start, end int) RopeSlice {
	// Descend to the deepest node that still contains the full range.
	nStart, nEnd := start, end
	n := root
	for n.kind == nodeInternal {
		a := n.children
		descended := false
		acc := 0
		for i := 0; i < a.count; i++ {
			if nStart >= acc && nEnd < acc+a.info[i].Chars {
				nStart -= acc
				nEnd -= acc
				n = a.nodes[i]
				descended = true
				break
			}
			acc += a.info[i].Chars
		}
		if !descended {
			break
		}
	}

	n.retain()
	return RopeSlice{
		node:      n,
		startByte: n.charToByte(nStart),
		endByte:   n.charToByte(nEnd),
		startChar: nStart,
		endChar:   nEnd,
		startLine: n.charToLine(nStart),
		endLine:   n.charToLine(nEnd),
	}
}

//
// Informational methods
//

// LenBytes returns the number of bytes in the slice.
func (s RopeSlice) LenBytes() int { return s.endByte - s.startByte }

// LenChars returns the number of scalars in the slice.
func (s RopeSlice) LenChars() int { return s.endChar - s.startChar }

// LenLines returns the number of lines in the slice.
func (s RopeSlice) LenLines() int { return s.endLine - s.startLine + 1 }

//
// Index conversions
//

// CharToLine returns the slice-local line index of the charIdx-th scalar.
func (s RopeSlice) CharToLine(charIdx int) int {
	if charIdx > s.LenChars() {
		panic(fmt.Sprintf("rope: char index %d out of bounds (len %d)", charIdx, s.LenChars()))
	}
	if charIdx == s.LenChars() {
		return s.LenLines()
	}
	return s.node.charToLine(s.startChar+charIdx) - s.startLine
}

// LineToChar returns the slice-local starting scalar of line lineIdx,
// clamped to the slice's start.
func (s RopeSlice) LineToChar(lineIdx int) int {
	if lineIdx > s.LenLines() {
		panic(fmt.Sprintf("rope: line index %d out of bounds (len %d)", lineIdx, s.LenLines()))
	}
	if lineIdx == s.LenLines() {
		return s.LenChars()
	}
	raw := s.node.lineToChar(s.startLine + lineIdx)
	if raw < s.startChar {
		return 0
	}
	return raw - s.startChar
}

//
// Fetches
//

// Char returns the scalar at charIdx.
func (s RopeSlice) Char(charIdx int) rune {
	if charIdx >= s.LenChars() {
		panic(fmt.Sprintf("rope: char index %d out of bounds (len %d)", charIdx, s.LenChars()))
	}
	return s.node.charAt(s.startChar + charIdx)
}

// Line returns line lineIdx of the slice as a sub-slice.
func (s RopeSlice) Line(lineIdx int) RopeSlice {
	if lineIdx >= s.LenLines() {
		panic(fmt.Sprintf("rope: line index %d out of bounds (len %d)", lineIdx, s.LenLines()))
	}
	start := s.LineToChar(lineIdx)
	end := s.LineToChar(lineIdx + 1)
	return s.Slice(start, end)
}

//
// Grapheme methods
//

// IsGraphemeBoundary reports whether slice-local charIdx is a cluster
// boundary. The slice's own ends always count as boundaries.
func (s RopeSlice) IsGraphemeBoundary(charIdx int) bool {
	if charIdx > s.LenChars() {
		panic(fmt.Sprintf("rope: char index %d out of bounds (len %d)", charIdx, s.LenChars()))
	}
	if charIdx == 0 || charIdx == s.LenChars() {
		return true
	}
	return s.node.isGraphemeBoundary(s.startChar + charIdx)
}

// PrevGraphemeBoundary returns the largest boundary strictly below
// charIdx, clamped to the slice's start.
func (s RopeSlice) PrevGraphemeBoundary(charIdx int) int {
	if charIdx > s.LenChars() {
		panic(fmt.Sprintf("rope: char index %d out of bounds (len %d)", charIdx, s.LenChars()))
	}
	b := s.node.prevGraphemeBoundary(s.startChar + charIdx)
	if b < s.startChar {
		return 0
	}
	return b - s.startChar
}

// NextGraphemeBoundary returns the smallest boundary strictly above
// charIdx, clamped to the slice's end.
func (s RopeSlice) NextGraphemeBoundary(charIdx int) int {
	if charIdx > s.LenChars() {
		panic(fmt.Sprintf("rope: char index %d out of bounds (len %d)", charIdx, s.LenChars()))
	}
	b := s.node.nextGraphemeBoundary(s.startChar + charIdx)
	if b >= s.endChar {
		return s.LenChars()
	}
	return b - s.startChar
}

//
// Slicing
//

// Slice returns a sub-view of the char range [start, end).
func (s RopeSlice) Slice(start, end int) RopeSlice {
	if start > end || end > s.LenChars() {
		panic(fmt.Sprintf("rope: bad slice range [%d, %d) (len %d)", start, end, s.LenChars()))
	}
	return newSliceWithRange(s.node, s.startChar+start, s.startChar+end)
}

//
// Iterators
//

// Bytes iterates over the slice's bytes.
func (s RopeSlice) Bytes() *Bytes { return newBytes(s.node, s.startChar, s.endChar) }

// Chars iterates over the slice's scalars.
func (s RopeSlice) Chars() *Chars { return newChars(s.node, s.startChar, s.endChar) }

// Chunks iterates over the slice's chunks.
func (s RopeSlice) Chunks() *Chunks { return newChunks(s.node, s.startChar, s.endChar) }

// Graphemes iterates over the slice's extended grapheme clusters.
func (s RopeSlice) Graphemes() *Graphemes { return newGraphemes(s.node, s.startChar, s.endChar) }

// Lines iterates over the slice's lines.
func (s RopeSlice) Lines() *Lines { return newLines(s.node, s.startChar, s.endChar) }

//
// Conversions
//

// String copies the slice's text into one string.
func (s RopeSlice) String() string {
	buf := make([]byte, 0, s.LenBytes())
	it := s.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		buf = append(buf, chunk...)
	}
	return string(buf)
}

// ToRope converts the slice into an owned rope: clone the anchor handle,
// then trim the right end and the left end.
func (s RopeSlice) ToRope() *Rope {
	s.node.retain()
	r := &Rope{root: s.node}
	if s.endChar < r.LenChars() {
		r.Remove(s.endChar, r.LenChars())
	}
	if s.startChar > 0 {
		r.Remove(0, s.startChar)
	}
	return r
}

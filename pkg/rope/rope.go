// pkg/rope/rope.go
//
// Package rope implements a persistent rope for Unicode text: a balanced
// B-tree whose leaves hold short UTF-8 chunks and whose internal nodes
// aggregate byte, scalar, and line-break counts. Edits are copy-on-write
// over atomically reference-counted nodes, so clones and slices are cheap
// and existing holders always observe an unchanged snapshot. Edits never
// leave an extended grapheme cluster split across two leaves.
package rope

import "fmt"

// Rope is a text document addressable by byte, scalar ("char"), and line
// indices. The zero Rope is not usable; construct with New or
// NewFromString. A Rope may be read from many goroutines at once, but a
// single Rope value must not be mutated concurrently.
type Rope struct {
	root *node
}

// New returns an empty rope.
func New() *Rope {
	return &Rope{root: newEmptyNode()}
}

// NewFromString builds a balanced rope over the given text.
func NewFromString(s string) *Rope {
	if s == "" {
		return New()
	}
	pieces := splitTextForLeaves(s)
	leaves := make([]*node, len(pieces))
	for i, p := range pieces {
		leaves[i] = newLeafNode(p)
	}
	return &Rope{root: buildTree(leaves)}
}

// Clone forks the rope in O(1). Both forks share the tree until one of
// them is edited.
func (r *Rope) Clone() *Rope {
	r.root.retain()
	return &Rope{root: r.root}
}

//
// Metric queries
//

// LenBytes returns the total number of bytes.
func (r *Rope) LenBytes() int { return r.root.byteCount() }

// LenChars returns the total number of scalar values.
func (r *Rope) LenChars() int { return r.root.charCount() }

// LenLines returns the number of lines, which is always one more than the
// number of line breaks.
func (r *Rope) LenLines() int { return r.root.lineBreakCount() + 1 }

//
// Index conversions
//

// CharToByte returns the byte offset of the charIdx-th scalar.
func (r *Rope) CharToByte(charIdx int) int {
	r.boundsCheckChar(charIdx)
	return r.root.charToByte(charIdx)
}

// ByteToChar returns the scalar index of the scalar starting at byteIdx.
func (r *Rope) ByteToChar(byteIdx int) int {
	if byteIdx > r.LenBytes() {
		panic(fmt.Sprintf("rope: byte index %d out of bounds (len %d)", byteIdx, r.LenBytes()))
	}
	return r.root.byteToChar(byteIdx)
}

// CharToLine returns the line index containing the charIdx-th scalar.
func (r *Rope) CharToLine(charIdx int) int {
	r.boundsCheckChar(charIdx)
	return r.root.charToLine(charIdx)
}

// LineToChar returns the starting scalar of line lineIdx.
func (r *Rope) LineToChar(lineIdx int) int {
	if lineIdx > r.LenLines() {
		panic(fmt.Sprintf("rope: line index %d out of bounds (len %d)", lineIdx, r.LenLines()))
	}
	if lineIdx == r.LenLines() {
		return r.LenChars()
	}
	return r.root.lineToChar(lineIdx)
}

// ByteToLine returns the line index containing byteIdx.
func (r *Rope) ByteToLine(byteIdx int) int {
	if byteIdx > r.LenBytes() {
		panic(fmt.Sprintf("rope: byte index %d out of bounds (len %d)", byteIdx, r.LenBytes()))
	}
	return r.root.byteToLine(byteIdx)
}

// LineToByte returns the starting byte of line lineIdx.
func (r *Rope) LineToByte(lineIdx int) int {
	if lineIdx > r.LenLines() {
		panic(fmt.Sprintf("rope: line index %d out of bounds (len %d)", lineIdx, r.LenLines()))
	}
	if lineIdx == r.LenLines() {
		return r.LenBytes()
	}
	return r.root.lineToByte(lineIdx)
}

//
// Grapheme queries
//

// IsGraphemeBoundary reports whether charIdx falls on an extended grapheme
// cluster boundary.
func (r *Rope) IsGraphemeBoundary(charIdx int) bool {
	r.boundsCheckChar(charIdx)
	return r.root.isGraphemeBoundary(charIdx)
}

// PrevGraphemeBoundary returns the largest cluster boundary strictly below
// charIdx, clamped to 0.
func (r *Rope) PrevGraphemeBoundary(charIdx int) int {
	r.boundsCheckChar(charIdx)
	return r.root.prevGraphemeBoundary(charIdx)
}

// NextGraphemeBoundary returns the smallest cluster boundary strictly above
// charIdx, clamped to LenChars.
func (r *Rope) NextGraphemeBoundary(charIdx int) int {
	r.boundsCheckChar(charIdx)
	return r.root.nextGraphemeBoundary(charIdx)
}

//
// Fetches
//

// Char returns the scalar at charIdx.
func (r *Rope) Char(charIdx int) rune {
	if charIdx >= r.LenChars() {
		panic(fmt.Sprintf("rope: char index %d out of bounds (len %d)", charIdx, r.LenChars()))
	}
	return r.root.charAt(charIdx)
}

// Line returns line lineIdx as a slice, including its trailing break.
func (r *Rope) Line(lineIdx int) RopeSlice {
	if lineIdx >= r.LenLines() {
		panic(fmt.Sprintf("rope: line index %d out of bounds (len %d)", lineIdx, r.LenLines()))
	}
	start := r.LineToChar(lineIdx)
	end := r.LineToChar(lineIdx + 1)
	return r.Slice(start, end)
}

// Slice returns a read-only view of the char range [start, end).
func (r *Rope) Slice(start, end int) RopeSlice {
	if start > end || end > r.LenChars() {
		panic(fmt.Sprintf("rope: bad slice range [%d, %d) (len %d)", start, end, r.LenChars()))
	}
	return newSliceWithRange(r.root, start, end)
}

//
// Edits
//

// Insert splices text in before the charIdx-th scalar. Text of any length
// is accepted; oversized insertions are cut at cluster boundaries first.
func (r *Rope) Insert(charIdx int, text string) {
	r.boundsCheckChar(charIdx)
	if text == "" {
		return
	}
	for _, seg := range segmentInsertText(text) {
		r.insertSegment(charIdx, seg)
		charIdx += textInfoOf([]byte(seg)).Chars
	}
}

func (r *Rope) insertSegment(charIdx int, text string) {
	root := makeMut(&r.root)
	residual, seam := root.insert(charIdx, text)
	if residual != nil {
		// The root split: grow the tree by one level.
		a := &childArray{}
		a.push(r.root.textInfo(), r.root)
		a.push(residual.textInfo(), residual)
		r.root = newInternalNode(a)
	}
	if seam != noSeam {
		makeMut(&r.root).fixGraphemeSeam(seam)
	}
}

// Remove deletes the char range [start, end).
func (r *Rope) Remove(start, end int) {
	if start > end || end > r.LenChars() {
		panic(fmt.Sprintf("rope: bad remove range [%d, %d) (len %d)", start, end, r.LenChars()))
	}
	if start == end {
		return
	}
	root := makeMut(&r.root)
	root.removeRange(start, end)
	r.collapseRoot()

	// The text on either side of the removal point is newly adjacent; heal
	// the seam if that point sits between two leaves.
	if r.LenChars() == 0 {
		return
	}
	b := r.root.charToByte(start)
	if b > 0 && b < r.LenBytes() && r.root.isLeafBoundary(b) {
		makeMut(&r.root).fixGraphemeSeam(b)
	}
}

// collapseRoot shrinks the tree after removals: a single-child internal
// root is replaced by its child, and an emptied root leaf reverts to the
// empty node.
func (r *Rope) collapseRoot() {
	for r.root.kind == nodeInternal && r.root.children.count == 1 {
		_, child := r.root.children.pop()
		old := r.root
		r.root = child
		old.release()
	}
	if r.root.kind == nodeInternal && r.root.children.count == 0 {
		old := r.root
		r.root = newEmptyNode()
		old.release()
	}
	if r.root.kind == nodeLeaf && r.root.text.len() == 0 {
		old := r.root
		r.root = newEmptyNode()
		old.release()
	}
}

// SplitOff cuts the rope at charIdx and returns the right part, leaving
// the left part in place. Both halves share unchanged subtrees.
func (r *Rope) SplitOff(charIdx int) *Rope {
	r.boundsCheckChar(charIdx)
	right := r.Clone()
	right.Remove(0, charIdx)
	r.Remove(charIdx, r.LenChars())
	return right
}

// Append concatenates other onto the end of r. The other rope is not
// consumed.
func (r *Rope) Append(other *Rope) {
	it := other.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			return
		}
		r.Insert(r.LenChars(), chunk)
	}
}

//
// Whole-rope conversions and comparisons
//

// String concatenates every chunk into one string.
func (r *Rope) String() string {
	buf := make([]byte, 0, r.LenBytes())
	it := r.Chunks()
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		buf = append(buf, chunk...)
	}
	return string(buf)
}

// Equal reports whether two ropes hold the same text. Leaf boundaries may
// differ; comparison streams both chunk sequences with rolling
// unequal-length slicing.
func (r *Rope) Equal(other *Rope) bool {
	if r.LenBytes() != other.LenBytes() {
		return false
	}
	ia, ib := r.Chunks(), other.Chunks()
	var ca, cb string
	for {
		if ca == "" {
			chunk, ok := ia.Next()
			if !ok {
				// Same byte length and every prefix matched.
				return true
			}
			ca = chunk
		}
		if cb == "" {
			chunk, ok := ib.Next()
			if !ok {
				return false
			}
			cb = chunk
		}
		n := len(ca)
		if len(cb) < n {
			n = len(cb)
		}
		if ca[:n] != cb[:n] {
			return false
		}
		ca, cb = ca[n:], cb[n:]
	}
}

// EqualString reports whether the rope holds exactly s.
func (r *Rope) EqualString(s string) bool {
	if r.LenBytes() != len(s) {
		return false
	}
	it := r.Chunks()
	pos := 0
	for {
		chunk, ok := it.Next()
		if !ok {
			return pos == len(s)
		}
		if s[pos:pos+len(chunk)] != chunk {
			return false
		}
		pos += len(chunk)
	}
}

//
// Iterators
//

// Bytes iterates over the rope's bytes.
func (r *Rope) Bytes() *Bytes { return newBytes(r.root, 0, r.LenChars()) }

// Chars iterates over the rope's scalars.
func (r *Rope) Chars() *Chars { return newChars(r.root, 0, r.LenChars()) }

// Chunks iterates over the rope's leaf chunks.
func (r *Rope) Chunks() *Chunks { return newChunks(r.root, 0, r.LenChars()) }

// Graphemes iterates over the rope's extended grapheme clusters.
func (r *Rope) Graphemes() *Graphemes { return newGraphemes(r.root, 0, r.LenChars()) }

// Lines iterates over the rope's lines as slices.
func (r *Rope) Lines() *Lines { return newLines(r.root, 0, r.LenChars()) }

func (r *Rope) boundsCheckChar(charIdx int) {
	if charIdx > r.LenChars() {
		panic(fmt.Sprintf("rope: char index %d out of bounds (len %d)", charIdx, r.LenChars()))
	}
}

// verifyIntegrity re-derives every cached summary; tests call this after
// each mutation.
func (r *Rope) verifyIntegrity() error {
	return r.root.verifyIntegrity()
}

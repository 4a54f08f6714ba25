// pkg/rope/node.go
package rope

import (
	"fmt"
	"sync/atomic"

	"github.com/rivo/uniseg"
)

// noSeam marks the absence of a grapheme seam candidate after an edit.
const noSeam = -1

type nodeKind uint8

const (
	nodeEmpty nodeKind = iota
	nodeLeaf
	nodeInternal
)

// node is one vertex of the rope tree: empty (only ever a fresh root), a
// leaf holding a bounded text buffer, or an internal node holding a child
// array. Nodes are shared between ropes and slices through atomic reference
// counts; all mutation goes through makeMut, which clones a shared node
// first so other holders keep their snapshot.
type node struct {
	refs     atomic.Int32
	kind     nodeKind
	text     smallString // leaf only
	children *childArray // internal only
}

func newEmptyNode() *node {
	n := &node{kind: nodeEmpty}
	n.refs.Store(1)
	return n
}

func newLeafNode(text smallString) *node {
	n := &node{kind: nodeLeaf, text: text}
	n.refs.Store(1)
	return n
}

func newInternalNode(children *childArray) *node {
	n := &node{kind: nodeInternal, children: children}
	n.refs.Store(1)
	return n
}

// retain adds a reference. Cloning a handle is O(1).
func (n *node) retain() {
	n.refs.Add(1)
}

// release drops a reference; the last release frees the node's slots and
// cascades down its children.
func (n *node) release() {
	if n == nil {
		return
	}
	if n.refs.Add(-1) == 0 {
		if n.kind == nodeInternal {
			a := n.children
			for i := 0; i < a.count; i++ {
				a.nodes[i].release()
				a.nodes[i] = nil
			}
			a.count = 0
		}
		n.text.buf = nil
	}
}

// makeMut returns a uniquely-owned node at *np, cloning the shared one if
// other handles still reference it. Children of a clone remain shared.
func makeMut(np **node) *node {
	n := *np
	if n.refs.Load() > 1 {
		c := n.cloneShallow()
		n.release()
		*np = c
		n = c
	}
	return n
}

// cloneShallow copies the node itself; child handles are shared.
func (n *node) cloneShallow() *node {
	switch n.kind {
	case nodeLeaf:
		return newLeafNode(newSmallString(n.text.String()))
	case nodeInternal:
		return newInternalNode(n.children.clone())
	}
	return newEmptyNode()
}

//
// Metric queries
//

// textInfo returns the summary of the whole subtree.
func (n *node) textInfo() TextInfo {
	switch n.kind {
	case nodeLeaf:
		return textInfoOf(n.text.buf)
	case nodeInternal:
		return n.children.combinedInfo()
	}
	return TextInfo{}
}

func (n *node) byteCount() int      { return n.textInfo().Bytes }
func (n *node) charCount() int      { return n.textInfo().Chars }
func (n *node) lineBreakCount() int { return n.textInfo().LineBreaks }

//
// Index conversions. Each internal case locates the owning child with
// searchCombine and recurses with the prefix subtracted. The char- and
// byte-keyed conversions also short-circuit exact child boundaries; the
// line-keyed ones short-circuit only line 0.
//

func (n *node) charToByte(charIdx int) int {
	switch n.kind {
	case nodeEmpty:
		return 0
	case nodeLeaf:
		return chunkCharToByte(n.text.buf, charIdx)
	}
	if charIdx == 0 {
		return 0
	}
	a := n.children
	i, acc := a.searchCombine(func(inf TextInfo) bool { return charIdx <= inf.Chars })
	if charIdx == acc.Chars+a.info[i].Chars {
		return acc.Bytes + a.info[i].Bytes
	}
	return acc.Bytes + a.nodes[i].charToByte(charIdx-acc.Chars)
}

func (n *node) byteToChar(byteIdx int) int {
	switch n.kind {
	case nodeEmpty:
		return 0
	case nodeLeaf:
		return chunkByteToChar(n.text.buf, byteIdx)
	}
	if byteIdx == 0 {
		return 0
	}
	a := n.children
	i, acc := a.searchCombine(func(inf TextInfo) bool { return byteIdx <= inf.Bytes })
	if byteIdx == acc.Bytes+a.info[i].Bytes {
		return acc.Chars + a.info[i].Chars
	}
	return acc.Chars + a.nodes[i].byteToChar(byteIdx-acc.Bytes)
}

func (n *node) charToLine(charIdx int) int {
	switch n.kind {
	case nodeEmpty:
		return 0
	case nodeLeaf:
		return chunkCharToLine(n.text.buf, charIdx)
	}
	if charIdx == 0 {
		return 0
	}
	a := n.children
	i, acc := a.searchCombine(func(inf TextInfo) bool { return charIdx <= inf.Chars })
	if charIdx == acc.Chars+a.info[i].Chars {
		return acc.LineBreaks + a.info[i].LineBreaks
	}
	return acc.LineBreaks + a.nodes[i].charToLine(charIdx-acc.Chars)
}

func (n *node) byteToLine(byteIdx int) int {
	switch n.kind {
	case nodeEmpty:
		return 0
	case nodeLeaf:
		return chunkByteToLine(n.text.buf, byteIdx)
	}
	if byteIdx == 0 {
		return 0
	}
	a := n.children
	i, acc := a.searchCombine(func(inf TextInfo) bool { return byteIdx <= inf.Bytes })
	if byteIdx == acc.Bytes+a.info[i].Bytes {
		return acc.LineBreaks + a.info[i].LineBreaks
	}
	return acc.LineBreaks + a.nodes[i].byteToLine(byteIdx-acc.Bytes)
}

// lineToChar returns the starting scalar of line lineIdx; line 0 starts at
// the document start.
func (n *node) lineToChar(lineIdx int) int {
	if lineIdx == 0 {
		return 0
	}
	switch n.kind {
	case nodeEmpty:
		panic(fmt.Sprintf("rope: line index %d out of bounds (0 breaks)", lineIdx))
	case nodeLeaf:
		return chunkLineToChar(n.text.buf, lineIdx)
	}
	a := n.children
	i, acc := a.searchCombine(func(inf TextInfo) bool { return lineIdx <= inf.LineBreaks })
	return acc.Chars + a.nodes[i].lineToChar(lineIdx-acc.LineBreaks)
}

func (n *node) lineToByte(lineIdx int) int {
	if lineIdx == 0 {
		return 0
	}
	switch n.kind {
	case nodeEmpty:
		panic(fmt.Sprintf("rope: line index %d out of bounds (0 breaks)", lineIdx))
	case nodeLeaf:
		return chunkLineToByte(n.text.buf, lineIdx)
	}
	a := n.children
	i, acc := a.searchCombine(func(inf TextInfo) bool { return lineIdx <= inf.LineBreaks })
	return acc.Bytes + a.nodes[i].lineToByte(lineIdx-acc.LineBreaks)
}

//
// Grapheme-boundary queries. Seam repair keeps clusters inside single
// leaves, so each query resolves within the leaf that contains the
// position.
//

// leafAtChar returns the leaf text containing the scalar at charIdx along
// with the leaf's starting scalar offset. charIdx must be below charCount.
func (n *node) leafAtChar(charIdx int) ([]byte, int) {
	if n.kind != nodeInternal {
		return n.text.buf, 0
	}
	a := n.children
	i, acc := a.searchCombine(func(inf TextInfo) bool { return charIdx < inf.Chars })
	buf, start := a.nodes[i].leafAtChar(charIdx - acc.Chars)
	return buf, start + acc.Chars
}

func (n *node) isGraphemeBoundary(charIdx int) bool {
	total := n.charCount()
	if charIdx == 0 || charIdx == total {
		return true
	}
	buf, start := n.leafAtChar(charIdx)
	return graphemeBoundaryAtChar(buf, charIdx-start)
}

// prevGraphemeBoundary returns the largest boundary strictly below charIdx,
// clamped to 0.
func (n *node) prevGraphemeBoundary(charIdx int) int {
	if charIdx <= 0 {
		return 0
	}
	buf, start := n.leafAtChar(charIdx - 1)
	return start + prevGraphemeBoundaryChar(buf, charIdx-start)
}

// nextGraphemeBoundary returns the smallest boundary strictly above
// charIdx, clamped to charCount.
func (n *node) nextGraphemeBoundary(charIdx int) int {
	total := n.charCount()
	if charIdx >= total {
		return total
	}
	buf, start := n.leafAtChar(charIdx)
	return start + nextGraphemeBoundaryChar(buf, charIdx-start)
}

// charAt decodes the scalar at charIdx.
func (n *node) charAt(charIdx int) rune {
	buf, start := n.leafAtChar(charIdx)
	return chunkCharAt(buf, charIdx-start)
}

//
// Insertion
//

// insert splices text in at charPos. It returns a right-side residual node
// when the content no longer fits in this node, plus the node-local byte
// position of a possible grapheme seam (noSeam if none). The receiver must
// be uniquely owned.
func (n *node) insert(charPos int, text string) (*node, int) {
	switch n.kind {
	case nodeEmpty:
		n.kind = nodeLeaf
		n.text = newSmallString(text)
		return nil, noSeam

	case nodeLeaf:
		bytePos := chunkCharToByte(n.text.buf, charPos)
		seam := noSeam
		if bytePos == 0 {
			seam = 0
		} else if bytePos == n.text.len() {
			seam = n.text.len() + len(text)
		}

		n.text.insert(bytePos, text)

		if n.text.len() <= maxBytes {
			return nil, seam
		}
		splitPos := n.text.len() - n.text.len()/2
		right := splitNearByte(&n.text, splitPos)
		if right.len() > 0 {
			n.text.shrinkToFit()
			return newLeafNode(right), seam
		}
		// No valid split position; leave the leaf oversized.
		return nil, seam
	}

	a := n.children
	childI, acc := a.searchCombine(func(inf TextInfo) bool { return charPos <= inf.Chars })

	child := makeMut(&a.nodes[childI])
	residual, childSeam := child.insert(charPos-acc.Chars, text)
	a.info[childI] = a.nodes[childI].textInfo()

	seam := noSeam
	if childSeam != noSeam {
		seam = childSeam + acc.Bytes
	}

	if residual == nil {
		return nil, seam
	}
	if !a.isFull() {
		a.insert(childI+1, residual.textInfo(), residual)
		return nil, seam
	}
	right := a.insertSplit(childI+1, residual.textInfo(), residual)
	return newInternalNode(right), seam
}

//
// Removal
//

// isUndersized reports whether the node violates its non-root lower bound.
func (n *node) isUndersized() bool {
	switch n.kind {
	case nodeLeaf:
		return n.text.len() < minBytes
	case nodeInternal:
		return n.children.count < minChildren
	}
	return true
}

// removeRange deletes scalars [startChar, endChar). The receiver must be
// uniquely owned and the range non-empty and in bounds. Underflow of this
// node itself is left for the parent (or the rope root) to repair.
func (n *node) removeRange(startChar, endChar int) {
	switch n.kind {
	case nodeEmpty:
		return
	case nodeLeaf:
		sb := chunkCharToByte(n.text.buf, startChar)
		eb := chunkCharToByte(n.text.buf, endChar)
		n.text.removeRange(sb, eb)
		return
	}

	a := n.children
	// Locate the run of children the range touches.
	li, ri := -1, -1
	var lcs, rcs int
	acc := 0
	for i := 0; i < a.count; i++ {
		cs := acc
		ce := acc + a.info[i].Chars
		if ce > startChar && cs < endChar {
			if li < 0 {
				li, lcs = i, cs
			}
			ri, rcs = i, cs
		}
		acc = ce
	}
	if li < 0 {
		return
	}

	if li == ri {
		child := makeMut(&a.nodes[li])
		child.removeRange(startChar-lcs, endChar-lcs)
		a.info[li] = child.textInfo()
		n.repairUnderflow(li)
		return
	}

	leftPartial := startChar > lcs
	rightPartial := endChar < rcs+a.info[ri].Chars
	if leftPartial {
		child := makeMut(&a.nodes[li])
		child.removeRange(startChar-lcs, a.info[li].Chars)
		a.info[li] = child.textInfo()
	}
	if rightPartial {
		child := makeMut(&a.nodes[ri])
		child.removeRange(0, endChar-rcs)
		a.info[ri] = child.textInfo()
	}

	// Excise children the range covers wholly.
	lo, hi := li, ri
	if leftPartial {
		lo = li + 1
	}
	if rightPartial {
		hi = ri - 1
	}
	for i := hi; i >= lo; i-- {
		_, dead := a.remove(i)
		dead.release()
	}

	// Repair the surviving edge children. Each merge made while repairing
	// the left edge moves the right edge child one slot to the left.
	shift := 0
	if leftPartial {
		before := a.count
		n.repairUnderflow(li)
		shift = before - a.count
	}
	if rightPartial {
		idx := lo - shift
		if idx < 0 {
			idx = 0
		}
		if idx >= a.count {
			idx = a.count - 1
		}
		n.repairUnderflow(idx)
	}
}

// repairUnderflow merges child i with a neighbor until it satisfies its
// lower bound or no sibling remains. A failed merge equidistributes, which
// always lifts both halves above their bounds.
func (n *node) repairUnderflow(i int) {
	a := n.children
	for a.count > 1 && i < a.count && a.nodes[i].isUndersized() {
		if i > 0 {
			if !a.mergeDistribute(i-1, i) {
				return
			}
			i--
		} else {
			if !a.mergeDistribute(0, 1) {
				return
			}
		}
	}
}

//
// Grapheme seam repair
//

// fixGraphemeSeam heals a cluster that straddles the leaf boundary at
// bytePos, moving bytes into the left leaf. The position must land on a
// boundary between two adjacent leaves or at the outer extremes. For a
// position at the node's own edge the leaf text is returned so an ancestor
// can pair it with its neighbor. The receiver must be uniquely owned.
func (n *node) fixGraphemeSeam(bytePos int) *smallString {
	switch n.kind {
	case nodeEmpty:
		return nil
	case nodeLeaf:
		if bytePos == 0 || bytePos == n.text.len() {
			return &n.text
		}
		panic(fmt.Sprintf("rope: byte position %d is not on a leaf boundary", bytePos))
	}

	a := n.children
	if bytePos == 0 {
		return makeMut(&a.nodes[0]).fixGraphemeSeam(0)
	}
	if bytePos == a.combinedInfo().Bytes {
		last := a.count - 1
		return makeMut(&a.nodes[last]).fixGraphemeSeam(a.info[last].Bytes)
	}

	childI, acc := a.searchCombine(func(inf TextInfo) bool { return bytePos <= inf.Bytes })
	posInChild := bytePos - acc.Bytes
	childLen := a.info[childI].Bytes

	if posInChild != 0 && posInChild != childLen {
		return makeMut(&a.nodes[childI]).fixGraphemeSeam(posInChild)
	}

	// The seam sits between two sibling subtrees. Pull up the two adjacent
	// leaf texts and repair them directly.
	li := childI
	if posInChild == 0 {
		li = childI - 1
	}
	left := makeMut(&a.nodes[li])
	right := makeMut(&a.nodes[li+1])
	lt := left.fixGraphemeSeam(a.info[li].Bytes)
	rt := right.fixGraphemeSeam(0)
	fixSeamStrings(lt, rt)
	left.fixInfoRight()
	right.fixInfoLeft()
	a.info[li] = left.textInfo()
	a.info[li+1] = right.textInfo()
	return nil
}

// fixInfoLeft recomputes the info slots down the leftmost spine, which is
// the only part of the subtree a seam repair can have changed.
func (n *node) fixInfoLeft() {
	if n.kind != nodeInternal {
		return
	}
	a := n.children
	first := makeMut(&a.nodes[0])
	first.fixInfoLeft()
	a.info[0] = first.textInfo()
}

// fixInfoRight recomputes the info slots down the rightmost spine.
func (n *node) fixInfoRight() {
	if n.kind != nodeInternal {
		return
	}
	a := n.children
	last := makeMut(&a.nodes[a.count-1])
	last.fixInfoRight()
	a.info[a.count-1] = last.textInfo()
}

// isLeafBoundary reports whether bytePos falls exactly between two adjacent
// leaves (or at the outer extremes).
func (n *node) isLeafBoundary(bytePos int) bool {
	switch n.kind {
	case nodeEmpty:
		return true
	case nodeLeaf:
		return bytePos == 0 || bytePos == n.text.len()
	}
	a := n.children
	if bytePos == 0 || bytePos == a.combinedInfo().Bytes {
		return true
	}
	i, acc := a.searchCombine(func(inf TextInfo) bool { return bytePos <= inf.Bytes })
	pos := bytePos - acc.Bytes
	if pos == 0 || pos == a.info[i].Bytes {
		return true
	}
	return a.nodes[i].isLeafBoundary(pos)
}

//
// Integrity verification
//

// verifyIntegrity checks that every internal slot's cached info matches the
// child subtree below it. Used by tests and debugging.
func (n *node) verifyIntegrity() error {
	if n.kind != nodeInternal {
		return nil
	}
	a := n.children
	for i := 0; i < a.count; i++ {
		if got, want := a.info[i], a.nodes[i].textInfo(); got != want {
			return fmt.Errorf("rope: child %d info %+v does not match subtree summary %+v", i, got, want)
		}
		if err := a.nodes[i].verifyIntegrity(); err != nil {
			return err
		}
	}
	return nil
}

// depth returns the distance from this node down to its leaves.
func (n *node) depth() int {
	if n.kind != nodeInternal {
		return 0
	}
	return 1 + n.children.nodes[0].depth()
}

//
// Bulk construction
//

// buildTree assembles a balanced tree over pre-split leaf texts, packing
// each internal level into evenly sized groups of at most maxChildren.
func buildTree(leaves []*node) *node {
	if len(leaves) == 0 {
		return newEmptyNode()
	}
	level := leaves
	for len(level) > 1 {
		groups := (len(level) + maxChildren - 1) / maxChildren
		q, r := len(level)/groups, len(level)%groups
		next := make([]*node, 0, groups)
		idx := 0
		for g := 0; g < groups; g++ {
			size := q
			if g < r {
				size++
			}
			a := &childArray{}
			for k := 0; k < size; k++ {
				child := level[idx]
				a.push(child.textInfo(), child)
				idx++
			}
			next = append(next, newInternalNode(a))
		}
		level = next
	}
	return level[0]
}

// splitTextForLeaves cuts s into grapheme-respecting pieces sized for leaf
// nodes, distributing the bytes evenly so no piece lands far below
// minBytes.
func splitTextForLeaves(s string) []smallString {
	if len(s) <= maxBytes {
		return []smallString{newSmallString(s)}
	}
	pieces := make([]smallString, 0, len(s)/minBytes+1)
	rest := newSmallString(s)
	for rest.len() > maxBytes {
		// Retarget on every cut so grapheme-pinned shifts cannot drift the
		// tail out of bounds.
		remaining := (rest.len() + maxBytes - 1) / maxBytes
		target := rest.len() / remaining
		right := splitNearByte(&rest, target)
		if right.len() == 0 {
			// The whole remainder is one cluster; keep it as an oversized
			// leaf.
			break
		}
		piece := rest
		piece.shrinkToFit()
		pieces = append(pieces, piece)
		rest = right
	}
	pieces = append(pieces, rest)
	return pieces
}

// segmentInsertText cuts an oversized insertion into grapheme-respecting
// pieces no larger than maxBytes, so each descent stays within the leaf
// budget. A single cluster larger than maxBytes is kept whole.
func segmentInsertText(text string) []string {
	if len(text) <= maxBytes {
		return []string{text}
	}
	var segs []string
	start := 0
	pos := 0 // end of the previous cluster
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		next := pos + len(cluster)
		if next-start > maxBytes {
			if pos == start {
				// One cluster exceeds the budget; emit it whole.
				segs = append(segs, text[start:next])
				start = next
			} else {
				segs = append(segs, text[start:pos])
				start = pos
			}
		}
		pos = next
	}
	if start < len(text) {
		segs = append(segs, text[start:])
	}
	return segs
}

// pkg/rope/childarray.go
package rope

import "fmt"

// Tree fan-out and leaf size bounds. The root is exempt from both lower
// bounds.
const (
	maxChildren = 16
	minChildren = maxChildren / 2

	maxBytes = 334
	minBytes = maxBytes / 2
)

// childArray holds an internal node's children as two parallel
// fixed-capacity arrays: a tightly packed info array scanned by the hot
// searchCombine path, and the child handles it summarizes. The length is
// explicit; slots past count are dead.
type childArray struct {
	info  [maxChildren]TextInfo
	nodes [maxChildren]*node
	count int
}

func (a *childArray) len() int {
	return a.count
}

func (a *childArray) isFull() bool {
	return a.count == maxChildren
}

// item returns the nth slot's info and child.
func (a *childArray) item(n int) (TextInfo, *node) {
	if n >= a.count {
		panic(fmt.Sprintf("rope: child index %d out of bounds (len %d)", n, a.count))
	}
	return a.info[n], a.nodes[n]
}

// push appends a slot. Panics if full.
func (a *childArray) push(info TextInfo, child *node) {
	if a.isFull() {
		panic("rope: push into full child array")
	}
	a.info[a.count] = info
	a.nodes[a.count] = child
	a.count++
}

// pop removes and returns the last slot. Panics if empty.
func (a *childArray) pop() (TextInfo, *node) {
	if a.count == 0 {
		panic("rope: pop from empty child array")
	}
	a.count--
	info, child := a.info[a.count], a.nodes[a.count]
	a.nodes[a.count] = nil
	return info, child
}

// insert places a slot at index i, shifting later slots right. Panics if
// full or i > len.
func (a *childArray) insert(i int, info TextInfo, child *node) {
	if i > a.count {
		panic(fmt.Sprintf("rope: child index %d out of bounds (len %d)", i, a.count))
	}
	if a.isFull() {
		panic("rope: insert into full child array")
	}
	copy(a.info[i+1:a.count+1], a.info[i:a.count])
	copy(a.nodes[i+1:a.count+1], a.nodes[i:a.count])
	a.info[i] = info
	a.nodes[i] = child
	a.count++
}

// remove deletes the slot at index i, shifting later slots left, and
// returns it. Ownership of the child moves to the caller.
func (a *childArray) remove(i int) (TextInfo, *node) {
	if i >= a.count {
		panic(fmt.Sprintf("rope: child index %d out of bounds (len %d)", i, a.count))
	}
	info, child := a.info[i], a.nodes[i]
	copy(a.info[i:a.count-1], a.info[i+1:a.count])
	copy(a.nodes[i:a.count-1], a.nodes[i+1:a.count])
	a.count--
	a.nodes[a.count] = nil
	return info, child
}

// splitOff moves slots [i, len) into a new array and returns it.
func (a *childArray) splitOff(i int) *childArray {
	if i > a.count {
		panic(fmt.Sprintf("rope: child index %d out of bounds (len %d)", i, a.count))
	}
	right := &childArray{}
	for j := i; j < a.count; j++ {
		right.push(a.info[j], a.nodes[j])
		a.nodes[j] = nil
	}
	a.count = i
	return right
}

// pushSplit appends a slot that would overflow and splits the array so the
// left half keeps ceil((len+1)/2) slots. Returns the right half. Works on a
// full array.
func (a *childArray) pushSplit(info TextInfo, child *node) *childArray {
	rCount := (a.count + 1) / 2
	lCount := (a.count + 1) - rCount
	right := a.splitOff(lCount)
	right.push(info, child)
	return right
}

// insertSplit inserts a slot at index i and splits in half, even when the
// array is full. The items end up in index order with the new slot at i;
// the left half keeps ceil((len+1)/2) of them.
func (a *childArray) insertSplit(i int, info TextInfo, child *node) *childArray {
	if a.count == 0 || i > a.count {
		panic(fmt.Sprintf("rope: child index %d out of bounds (len %d)", i, a.count))
	}
	extraInfo, extraChild := info, child
	if i < a.count {
		extraInfo, extraChild = a.pop()
		a.insert(i, info, child)
	}
	return a.pushSplit(extraInfo, extraChild)
}

// two returns pointers into slots i and j, i < j, for simultaneous updates.
func (a *childArray) two(i, j int) (*TextInfo, **node, *TextInfo, **node) {
	if i >= j || j >= a.count {
		panic(fmt.Sprintf("rope: bad child pair (%d, %d) of %d", i, j, a.count))
	}
	return &a.info[i], &a.nodes[i], &a.info[j], &a.nodes[j]
}

// combinedInfo folds the info array into the node's own summary.
func (a *childArray) combinedInfo() TextInfo {
	var acc TextInfo
	for i := 0; i < a.count; i++ {
		acc = acc.combine(a.info[i])
	}
	return acc
}

// searchCombine scans left to right, accumulating the combined prefix, and
// returns the first index i where pred(prefix + info[i]) holds along with
// the prefix before i. A predicate that never holds is a caller bug.
func (a *childArray) searchCombine(pred func(TextInfo) bool) (int, TextInfo) {
	var acc TextInfo
	for i := 0; i < a.count; i++ {
		if pred(acc.combine(a.info[i])) {
			return i, acc
		}
		acc = acc.combine(a.info[i])
	}
	panic("rope: search predicate never satisfied")
}

// mergeDistribute merges children i and j (j = i+1) into one if the
// combined content fits, and otherwise equidistributes it between the two.
// Reports whether a merge happened; on merge, slot j is removed and its
// node released. Info slots are refreshed either way.
func (a *childArray) mergeDistribute(i, j int) bool {
	if j != i+1 || j >= a.count {
		panic(fmt.Sprintf("rope: bad child pair (%d, %d) of %d", i, j, a.count))
	}
	_, np1, _, np2 := a.two(i, j)
	n1 := makeMut(np1)
	n2 := makeMut(np2)

	if mergeOrBalance(n1, n2) {
		_, dead := a.remove(j)
		dead.release()
		a.info[i] = a.nodes[i].textInfo()
		return true
	}
	a.info[i] = a.nodes[i].textInfo()
	a.info[j] = a.nodes[j].textInfo()
	return false
}

// mergeOrBalance pours n2 into n1 when the combined content fits, and
// otherwise equidistributes it between the two. Reports whether n2 was
// emptied into n1. Both nodes must be uniquely owned and of the same kind;
// balance guarantees adjacent siblings never differ.
func mergeOrBalance(n1, n2 *node) bool {
	switch {
	case n1.kind == nodeLeaf && n2.kind == nodeLeaf:
		n1.text.pushBytes(n2.text.buf)
		if n1.text.len() <= maxBytes {
			return true
		}
		pos := n1.text.len() - n1.text.len()/2
		pos = nearestInternalGraphemeBoundary(n1.text.buf, pos)
		right := n1.text.splitOff(pos)
		if right.len() == 0 {
			// No interior cluster boundary; tolerate one oversized leaf.
			return true
		}
		n1.text.shrinkToFit()
		n2.text = right
		return false

	case n1.kind == nodeInternal && n2.kind == nodeInternal:
		c1, c2 := n1.children, n2.children
		// A removal can leave a chain of underfilled nodes down the seam
		// where the two subtrees meet; heal it before counting.
		healBoundary(c1, c2)
		if c2.count == 0 {
			return true
		}
		if c1.count == 0 || c1.count+c2.count < maxChildren {
			for c2.count > 0 {
				info, child := c2.remove(0)
				c1.push(info, child)
			}
			return true
		}
		rTarget := (c1.count + c2.count) / 2
		for c2.count < rTarget {
			info, child := c1.pop()
			c2.insert(0, info, child)
		}
		for c2.count > rTarget {
			info, child := c2.remove(0)
			c1.push(info, child)
		}
		return false

	default:
		panic("rope: sibling nodes have different kinds")
	}
}

// healBoundary repairs the junction where two adjacent internal nodes
// meet: the last child of c1 and the first child of c2 may be undersized
// after a removal, recursively down to the leaves.
func healBoundary(c1, c2 *childArray) {
	for c1.count > 0 && c2.count > 0 {
		l := makeMut(&c1.nodes[c1.count-1])
		r := makeMut(&c2.nodes[0])
		if !l.isUndersized() && !r.isUndersized() {
			return
		}
		if mergeOrBalance(l, r) {
			_, dead := c2.remove(0)
			dead.release()
			c1.info[c1.count-1] = c1.nodes[c1.count-1].textInfo()
			continue
		}
		c1.info[c1.count-1] = c1.nodes[c1.count-1].textInfo()
		c2.info[0] = c2.nodes[0].textInfo()
		return
	}
}

// clone duplicates the info array and shares every child handle. Subtrees
// are never deep-copied here; that is the point of copy-on-write.
func (a *childArray) clone() *childArray {
	c := &childArray{count: a.count}
	for i := 0; i < a.count; i++ {
		c.info[i] = a.info[i]
		c.nodes[i] = a.nodes[i]
		c.nodes[i].retain()
	}
	return c
}

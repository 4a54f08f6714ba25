// pkg/rope/childarray_test.go
package rope

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafOf(text string) *node {
	return newLeafNode(newSmallString(text))
}

func pushLeaf(a *childArray, text string) {
	n := leafOf(text)
	a.push(n.textInfo(), n)
}

// arrayTexts flattens the array's leaf contents in slot order.
func arrayTexts(a *childArray) []string {
	out := make([]string, 0, a.count)
	for i := 0; i < a.count; i++ {
		out = append(out, a.nodes[i].text.String())
	}
	return out
}

func TestChildArrayPushPopInsertRemove(t *testing.T) {
	a := &childArray{}
	assert.Equal(t, 0, a.len())
	assert.False(t, a.isFull())

	pushLeaf(a, "a")
	pushLeaf(a, "c")
	n := leafOf("b")
	a.insert(1, n.textInfo(), n)
	assert.Equal(t, []string{"a", "b", "c"}, arrayTexts(a))

	info, removed := a.remove(1)
	assert.Equal(t, "b", removed.text.String())
	assert.Equal(t, 1, info.Bytes)
	assert.Equal(t, []string{"a", "c"}, arrayTexts(a))

	_, popped := a.pop()
	assert.Equal(t, "c", popped.text.String())
	assert.Equal(t, []string{"a"}, arrayTexts(a))

	info, child := a.item(0)
	assert.Equal(t, "a", child.text.String())
	assert.Equal(t, 1, info.Chars)
}

func TestChildArrayBoundsPanics(t *testing.T) {
	a := &childArray{}
	assert.Panics(t, func() { a.pop() })
	assert.Panics(t, func() { a.remove(0) })
	assert.Panics(t, func() { a.item(0) })

	for i := 0; i < maxChildren; i++ {
		pushLeaf(a, "x")
	}
	require.True(t, a.isFull())
	assert.Panics(t, func() { pushLeaf(a, "overflow") })
	n := leafOf("overflow")
	assert.Panics(t, func() { a.insert(0, n.textInfo(), n) })
}

func TestChildArraySplitOff(t *testing.T) {
	a := &childArray{}
	for i := 0; i < 6; i++ {
		pushLeaf(a, fmt.Sprintf("l%d", i))
	}
	right := a.splitOff(4)
	assert.Equal(t, []string{"l0", "l1", "l2", "l3"}, arrayTexts(a))
	assert.Equal(t, []string{"l4", "l5"}, arrayTexts(right))
}

func TestChildArrayPushSplit(t *testing.T) {
	a := &childArray{}
	for i := 0; i < maxChildren; i++ {
		pushLeaf(a, fmt.Sprintf("l%02d", i))
	}
	n := leafOf("new")
	right := a.pushSplit(n.textInfo(), n)

	// Left keeps ceil(17/2) = 9, right gets the rest plus the new item.
	assert.Equal(t, 9, a.len())
	assert.Equal(t, 8, right.len())
	want := []string{"l09", "l10", "l11", "l12", "l13", "l14", "l15", "new"}
	assert.Equal(t, want, arrayTexts(right))
}

func TestChildArrayInsertSplitOrdering(t *testing.T) {
	a := &childArray{}
	for i := 0; i < maxChildren; i++ {
		pushLeaf(a, fmt.Sprintf("l%02d", i))
	}
	n := leafOf("new")
	right := a.insertSplit(3, n.textInfo(), n)

	// All seventeen items stay in index order with the new one at slot 3.
	got := append(arrayTexts(a), arrayTexts(right)...)
	want := []string{
		"l00", "l01", "l02", "new", "l03", "l04", "l05", "l06", "l07",
		"l08", "l09", "l10", "l11", "l12", "l13", "l14", "l15",
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 9, a.len())
	assert.Equal(t, 8, right.len())

	// Inserting at the end degenerates to pushSplit.
	b := &childArray{}
	for i := 0; i < maxChildren; i++ {
		pushLeaf(b, fmt.Sprintf("l%02d", i))
	}
	n = leafOf("new")
	rightB := b.insertSplit(maxChildren, n.textInfo(), n)
	assert.Equal(t, "new", rightB.nodes[rightB.count-1].text.String())
}

func TestChildArrayCombinedInfoAndSearch(t *testing.T) {
	a := &childArray{}
	pushLeaf(a, "ab")
	pushLeaf(a, "cde\n")
	pushLeaf(a, "fg")

	total := a.combinedInfo()
	assert.Equal(t, 8, total.Bytes)
	assert.Equal(t, 8, total.Chars)
	assert.Equal(t, 1, total.LineBreaks)

	// Scalar 3 lives in the second child; the prefix holds the first.
	i, acc := a.searchCombine(func(inf TextInfo) bool { return 3 < inf.Chars })
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, acc.Bytes)

	assert.Panics(t, func() {
		a.searchCombine(func(inf TextInfo) bool { return false })
	})
}

func TestMergeDistributeLeafMerge(t *testing.T) {
	a := &childArray{}
	pushLeaf(a, "hello ")
	pushLeaf(a, "world")

	merged := a.mergeDistribute(0, 1)
	assert.True(t, merged)
	assert.Equal(t, 1, a.len())
	assert.Equal(t, "hello world", a.nodes[0].text.String())
	assert.Equal(t, a.nodes[0].textInfo(), a.info[0])
}

func TestMergeDistributeLeafRedistribute(t *testing.T) {
	long := strings.Repeat("0123456789", 25) // 250 bytes
	a := &childArray{}
	pushLeaf(a, long)
	pushLeaf(a, long)

	merged := a.mergeDistribute(0, 1)
	assert.False(t, merged)
	assert.Equal(t, 2, a.len())

	l := a.nodes[0].text.len()
	r := a.nodes[1].text.len()
	assert.Equal(t, 500, l+r)
	assert.LessOrEqual(t, l, maxBytes)
	assert.LessOrEqual(t, r, maxBytes)
	assert.Equal(t, a.nodes[0].textInfo(), a.info[0])
	assert.Equal(t, a.nodes[1].textInfo(), a.info[1])
	assert.Equal(t, long+long, a.nodes[0].text.String()+a.nodes[1].text.String())
}

func TestMergeDistributeRespectsGraphemes(t *testing.T) {
	// The redistribute split must land on a cluster boundary: the midpoint
	// of the combined text sits between two adjacent flags, and neither
	// regional-indicator pair may be cut.
	left := strings.Repeat("a", 246) + "🇺🇸"  // 254 bytes
	right := "🇦🇺" + strings.Repeat("b", 246) // 254 bytes
	a := &childArray{}
	pushLeaf(a, left)
	pushLeaf(a, right)

	merged := a.mergeDistribute(0, 1)
	assert.False(t, merged)
	lbuf := a.nodes[0].text.buf
	assert.True(t, graphemeBoundaryAtByte(append(append([]byte{}, lbuf...), a.nodes[1].text.buf...), len(lbuf)))
}

func TestMergeDistributeInternalMerge(t *testing.T) {
	mk := func(k int) *node {
		a := &childArray{}
		for i := 0; i < k; i++ {
			pushLeaf(a, strings.Repeat("x", minBytes))
		}
		return newInternalNode(a)
	}

	a := &childArray{}
	n1, n2 := mk(3), mk(4)
	a.push(n1.textInfo(), n1)
	a.push(n2.textInfo(), n2)
	merged := a.mergeDistribute(0, 1)
	assert.True(t, merged)
	assert.Equal(t, 1, a.len())
	assert.Equal(t, 7, a.nodes[0].children.len())

	b := &childArray{}
	n3, n4 := mk(12), mk(8)
	b.push(n3.textInfo(), n3)
	b.push(n4.textInfo(), n4)
	merged = b.mergeDistribute(0, 1)
	assert.False(t, merged)
	assert.Equal(t, 10, b.nodes[0].children.len())
	assert.Equal(t, 10, b.nodes[1].children.len())
}

func TestMergeDistributeKindMismatchPanics(t *testing.T) {
	inner := &childArray{}
	pushLeaf(inner, "x")
	a := &childArray{}
	pushLeaf(a, "leaf")
	in := newInternalNode(inner)
	a.push(in.textInfo(), in)

	assert.Panics(t, func() { a.mergeDistribute(0, 1) })
}

func TestChildArrayCloneSharesChildren(t *testing.T) {
	a := &childArray{}
	pushLeaf(a, "one")
	pushLeaf(a, "two")

	c := a.clone()
	require.Equal(t, a.len(), c.len())
	for i := 0; i < a.count; i++ {
		assert.Same(t, a.nodes[i], c.nodes[i])
		assert.Equal(t, a.info[i], c.info[i])
		assert.Equal(t, int32(2), a.nodes[i].refs.Load())
	}
}

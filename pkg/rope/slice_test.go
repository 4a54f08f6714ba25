// pkg/rope/slice_test.go
package rope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceLens(t *testing.T) {
	r := NewFromString(benchText)
	s := r.Slice(7, 98)
	assert.Equal(t, 105, s.LenBytes())
	assert.Equal(t, 91, s.LenChars())
	assert.Equal(t, 1, s.LenLines())
}

func TestSliceLenLines(t *testing.T) {
	r := NewFromString(benchTextLines)
	assert.Equal(t, 3, r.Slice(34, 98).LenLines())
}

func TestSliceCharToLine(t *testing.T) {
	s := NewFromString(benchTextLines).Slice(34, 96)
	assert.Equal(t, 0, s.CharToLine(0))
	assert.Equal(t, 1, s.CharToLine(25))
	assert.Equal(t, 2, s.CharToLine(54))
	assert.Equal(t, 3, s.CharToLine(62))
}

func TestSliceLineToChar(t *testing.T) {
	s := NewFromString(benchTextLines).Slice(34, 96)
	assert.Equal(t, 0, s.LineToChar(0))
	assert.Equal(t, 25, s.LineToChar(1))
	assert.Equal(t, 54, s.LineToChar(2))
	assert.Equal(t, 62, s.LineToChar(3))
}

func TestSliceCharFetch(t *testing.T) {
	s := NewFromString(benchText).Slice(34, 100)
	assert.Equal(t, 't', s.Char(0))
	assert.Equal(t, ' ', s.Char(10))
	assert.Equal(t, 'n', s.Char(18))
	assert.Equal(t, 'な', s.Char(65))
}

func TestSliceGraphemesAcrossCRLF(t *testing.T) {
	s := NewFromString(benchTextCRLF).Slice(13, 50)

	assert.True(t, s.IsGraphemeBoundary(18))
	assert.False(t, s.IsGraphemeBoundary(19)) // inside CRLF
	assert.True(t, s.IsGraphemeBoundary(20))

	assert.Equal(t, 18, s.PrevGraphemeBoundary(19))
	assert.Equal(t, 20, s.NextGraphemeBoundary(19))
}

func TestSliceBoundaryBehaviors(t *testing.T) {
	r := NewFromString(benchText)

	empty := r.Slice(17, 17)
	assert.Equal(t, 0, empty.LenChars())
	assert.Equal(t, 0, empty.LenBytes())
	assert.Equal(t, 1, empty.LenLines())
	assert.Equal(t, "", empty.String())

	s := r.Slice(10, 90)
	assert.Panics(t, func() { s.Char(s.LenChars()) })
	assert.Panics(t, func() { s.Line(s.LenLines()) })
	assert.Panics(t, func() { r.Slice(50, 40) })
	assert.Panics(t, func() { r.Slice(0, r.LenChars()+1) })
}

func TestSubSliceComposes(t *testing.T) {
	text := strings.Repeat(benchTextLines, 9)
	r := NewFromString(text)
	chars := []rune(text)

	outer := r.Slice(100, 700)
	inner := outer.Slice(50, 400)
	direct := r.Slice(150, 500)

	assert.Equal(t, direct.String(), inner.String())
	assert.Equal(t, string(chars[150:500]), inner.String())
	assert.Equal(t, direct.LenBytes(), inner.LenBytes())
	assert.Equal(t, direct.LenLines(), inner.LenLines())
}

func TestSlicePicksDeepestSubtree(t *testing.T) {
	r := NewFromString(strings.Repeat(benchText, 40))
	require.Equal(t, nodeInternal, r.root.kind)

	// A range inside one leaf anchors at that leaf.
	s := r.Slice(3, 20)
	assert.Equal(t, nodeLeaf, s.node.kind)

	// A range straddling the root's children anchors at the root.
	wide := r.Slice(5, r.LenChars()-5)
	assert.Same(t, r.root, wide.node)
}

func TestSliceFullRangeToRope(t *testing.T) {
	r := NewFromString(strings.Repeat(benchTextLines, 15))
	back := r.Slice(0, r.LenChars()).ToRope()
	assert.True(t, back.Equal(r))
}

func TestSliceToRope(t *testing.T) {
	text := strings.Repeat(benchTextLines, 25)
	chars := []rune(text)
	r := NewFromString(text)

	s := r.Slice(333, 2000)
	sub := s.ToRope()
	assert.True(t, sub.EqualString(string(chars[333:2000])))
	checkTreeInvariants(t, sub)

	// The source is untouched.
	assert.True(t, r.EqualString(text))
	checkTreeInvariants(t, r)
}

func TestSliceLineFetch(t *testing.T) {
	s := NewFromString(benchTextLines).Slice(32, 100)
	// The slice starts at line 1 of the document.
	assert.Equal(t, "It's a fine day, isn't it?\n", s.Line(0).String())
	assert.Equal(t, "こんにちは、みんなさん！", s.Line(2).String())
}

func TestSliceClampsPartialLines(t *testing.T) {
	// The slice begins mid-line; line 0 of the slice is the tail of that
	// document line, so LineToChar(0) clamps to the slice start.
	s := NewFromString(benchTextLines).Slice(40, 90)
	assert.Equal(t, 0, s.LineToChar(0))
	line0 := s.Line(0)
	assert.Equal(t, "ine day, isn't it?\n", line0.String())
}

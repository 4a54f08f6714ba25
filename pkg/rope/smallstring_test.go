// pkg/rope/smallstring_test.go
package rope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmallStringInsert(t *testing.T) {
	s := newSmallString("hello world")
	s.insert(5, ",")
	assert.Equal(t, "hello, world", s.String())

	s.insert(0, ">> ")
	assert.Equal(t, ">> hello, world", s.String())

	s.insert(s.len(), " <<")
	assert.Equal(t, ">> hello, world <<", s.String())
}

func TestSmallStringInsertMultibyte(t *testing.T) {
	s := newSmallString("日本")
	s.insert(3, "の")
	assert.Equal(t, "日の本", s.String())

	assert.Panics(t, func() { s.insert(1, "x") })
	assert.Panics(t, func() { s.insert(s.len()+1, "x") })
}

func TestSmallStringSplitOff(t *testing.T) {
	s := newSmallString("hello world")
	right := s.splitOff(5)
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, " world", right.String())

	empty := s.splitOff(s.len())
	assert.Equal(t, 0, empty.len())
	whole := s.splitOff(0)
	assert.Equal(t, 0, s.len())
	assert.Equal(t, "hello", whole.String())
}

func TestSmallStringRemoveRange(t *testing.T) {
	s := newSmallString("hello cruel world")
	s.removeRange(5, 11)
	assert.Equal(t, "hello world", s.String())

	s.removeRange(0, s.len())
	assert.Equal(t, 0, s.len())
}

func TestSmallStringShrinkToFit(t *testing.T) {
	s := newSmallString("hello world")
	s.splitOff(5)
	s.shrinkToFit()
	require.Equal(t, "hello", s.String())
	assert.Equal(t, len(s.buf), cap(s.buf))
}

func TestChunkCharByteConversions(t *testing.T) {
	buf := []byte("aあb🙂c")

	assert.Equal(t, 0, chunkCharToByte(buf, 0))
	assert.Equal(t, 1, chunkCharToByte(buf, 1))
	assert.Equal(t, 4, chunkCharToByte(buf, 2))
	assert.Equal(t, 5, chunkCharToByte(buf, 3))
	assert.Equal(t, 9, chunkCharToByte(buf, 4))
	assert.Equal(t, 10, chunkCharToByte(buf, 5))
	assert.Panics(t, func() { chunkCharToByte(buf, 6) })

	for c := 0; c <= 5; c++ {
		assert.Equal(t, c, chunkByteToChar(buf, chunkCharToByte(buf, c)))
	}

	assert.Equal(t, 'あ', chunkCharAt(buf, 1))
	assert.Equal(t, '🙂', chunkCharAt(buf, 3))
}

func TestChunkLineConversions(t *testing.T) {
	buf := []byte("one\r\ntwo\nthree")

	// Scalar layout: o n e \r \n t w o \n t h r e e
	assert.Equal(t, 0, chunkCharToLine(buf, 0))
	assert.Equal(t, 0, chunkCharToLine(buf, 4)) // the LF of CRLF is still line 0
	assert.Equal(t, 1, chunkCharToLine(buf, 5))
	assert.Equal(t, 1, chunkCharToLine(buf, 8))
	assert.Equal(t, 2, chunkCharToLine(buf, 9))
	assert.Equal(t, 2, chunkCharToLine(buf, 14))

	assert.Equal(t, 5, chunkLineToChar(buf, 1))
	assert.Equal(t, 9, chunkLineToChar(buf, 2))
	assert.Panics(t, func() { chunkLineToChar(buf, 3) })

	assert.Equal(t, 5, chunkLineToByte(buf, 1))
	assert.Equal(t, 9, chunkLineToByte(buf, 2))

	assert.Equal(t, 0, chunkByteToLine(buf, 4)) // inside CRLF
	assert.Equal(t, 1, chunkByteToLine(buf, 5))
	assert.Equal(t, 2, chunkByteToLine(buf, len(buf)))
}

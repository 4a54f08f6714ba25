// pkg/rope/grapheme.go
package rope

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Extended grapheme-cluster boundaries per UAX #29, via rivo/uniseg. All
// positions here are chunk-local. The node layer guarantees that clusters
// never span two leaves, so every query can be answered within one chunk.

// graphemeBoundaryAtByte reports whether bytePos is a cluster boundary in
// buf. Position 0 and len(buf) are always boundaries.
func graphemeBoundaryAtByte(buf []byte, bytePos int) bool {
	if bytePos == 0 || bytePos == len(buf) {
		return true
	}
	pos := 0
	state := -1
	rest := buf
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		pos += len(cluster)
		if pos == bytePos {
			return true
		}
		if pos > bytePos {
			return false
		}
	}
	return false
}

// graphemeBoundaryAtChar is graphemeBoundaryAtByte in scalar coordinates.
func graphemeBoundaryAtChar(buf []byte, charPos int) bool {
	return graphemeBoundaryAtByte(buf, chunkCharToByte(buf, charPos))
}

// prevGraphemeBoundaryChar returns the largest cluster boundary in buf
// strictly below charPos, in scalars. Boundary 0 always qualifies.
func prevGraphemeBoundaryChar(buf []byte, charPos int) int {
	prev := 0
	chars := 0
	state := -1
	rest := buf
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		next := chars + utf8.RuneCount(cluster)
		if next >= charPos {
			return prev
		}
		prev = next
		chars = next
	}
	return prev
}

// nextGraphemeBoundaryChar returns the smallest cluster boundary in buf
// strictly above charPos, in scalars. len-in-scalars always qualifies.
func nextGraphemeBoundaryChar(buf []byte, charPos int) int {
	chars := 0
	state := -1
	rest := buf
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		chars += utf8.RuneCount(cluster)
		if chars > charPos {
			return chars
		}
	}
	return chars
}

// nearestInternalGraphemeBoundary returns the cluster boundary closest to
// bytePos that is strictly inside buf. If the text is a single cluster
// there is no interior boundary, and len(buf) is returned so that a split
// there produces an empty right side.
func nearestInternalGraphemeBoundary(buf []byte, bytePos int) int {
	best := -1
	pos := 0
	state := -1
	rest := buf
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		pos += len(cluster)
		if pos >= len(buf) {
			break
		}
		if best < 0 || abs(pos-bytePos) < abs(best-bytePos) {
			best = pos
		}
		if pos >= bytePos && best >= 0 {
			// Boundaries only move away from bytePos from here on.
			break
		}
	}
	if best < 0 {
		return len(buf)
	}
	return best
}

// splitNearByte splits buf near bytePos on a cluster boundary, preferring
// the largest boundary at or below bytePos and falling back to the smallest
// one above it. Returns the right half; the right half is empty when the
// whole text is a single cluster.
func splitNearByte(s *smallString, bytePos int) smallString {
	buf := s.buf
	split := -1
	pos := 0
	state := -1
	rest := buf
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		pos += len(cluster)
		if pos >= len(buf) {
			break
		}
		if pos <= bytePos {
			split = pos
			continue
		}
		if split < 0 {
			split = pos
		}
		break
	}
	if split < 0 {
		split = len(buf)
	}
	return s.splitOff(split)
}

// fixSeamStrings repairs a grapheme cluster straddling the boundary between
// two adjacent leaf texts by moving the straddling suffix of the cluster
// into the left leaf. The left leaf may transiently exceed maxBytes.
func fixSeamStrings(left, right *smallString) {
	if left.len() == 0 || right.len() == 0 {
		return
	}
	joined := make([]byte, 0, left.len()+right.len())
	joined = append(joined, left.buf...)
	joined = append(joined, right.buf...)

	seam := left.len()
	pos := 0
	state := -1
	rest := joined
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		end := pos + len(cluster)
		if end == seam {
			return // seam is already a boundary
		}
		if end > seam {
			moved := end - seam
			left.pushBytes(right.buf[:moved])
			right.buf = append(right.buf[:0], right.buf[moved:]...)
			return
		}
		pos = end
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

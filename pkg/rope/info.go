// pkg/rope/info.go
package rope

import "unicode/utf8"

// Line-break scalars beyond LF and CR. CRLF is counted as a single break.
const (
	runeVT      = '\v'
	runeFF      = '\f'
	runeNEL     = '\u0085'
	runeLineSep = '\u2028'
	runeParaSep = '\u2029'
)

// TextInfo summarizes a span of text: its byte length, scalar-value count,
// and line-break count. It forms a commutative monoid under combine, with
// the zero value as identity. Every internal node slot caches the TextInfo
// of the child subtree below it.
type TextInfo struct {
	Bytes      int
	Chars      int
	LineBreaks int
}

// combine returns the elementwise sum of a and b.
func (a TextInfo) combine(b TextInfo) TextInfo {
	return TextInfo{
		Bytes:      a.Bytes + b.Bytes,
		Chars:      a.Chars + b.Chars,
		LineBreaks: a.LineBreaks + b.LineBreaks,
	}
}

// textInfoOf computes the summary of a chunk in a single pass.
func textInfoOf(text []byte) TextInfo {
	info := TextInfo{Bytes: len(text)}
	for i := 0; i < len(text); {
		r, sz := utf8.DecodeRune(text[i:])
		i += sz
		info.Chars++
		switch r {
		case '\r':
			if i < len(text) && text[i] == '\n' {
				i++
				info.Chars++
			}
			info.LineBreaks++
		case '\n', runeVT, runeFF, runeNEL, runeLineSep, runeParaSep:
			info.LineBreaks++
		}
	}
	return info
}

// isLineBreak reports whether r terminates a line on its own. CR is
// handled separately by the scanners because of CRLF folding.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', runeVT, runeFF, runeNEL, runeLineSep, runeParaSep:
		return true
	}
	return false
}

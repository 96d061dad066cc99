package source

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a zero-based location in a text document. Column counts UTF-16
// code units, the unit used by the protocol layer that delivers edits.
type Position struct {
	Line   int
	Column int
}

// Range in a text document expressed as start and end positions.
// The range is half-open: [Start, End).
type Range struct {
	Start Position
	End   Position
}

// ByteRange is a half-open [Start, End) span of byte offsets.
type ByteRange struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (br ByteRange) Len() int {
	return br.End - br.Start
}

// lineInfo stores per-line offsets for position translation.
type lineInfo struct {
	byteOffset int // byte offset of line start
	byteLen    int // length in bytes, excluding the newline
	utf16Len   int // length in UTF-16 code units, excluding the newline
}

// buildLineIndex indexes every line of text for position lookup. The index
// always contains at least one line; a trailing newline yields a final empty
// line, matching how editors count lines.
func buildLineIndex(text string) []lineInfo {
	var lines []lineInfo

	lineStart := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, lineInfo{
				byteOffset: lineStart,
				byteLen:    i - lineStart,
				utf16Len:   utf16LenForString(text[lineStart:i]),
			})
			lineStart = i + 1
		}
	}

	lines = append(lines, lineInfo{
		byteOffset: lineStart,
		byteLen:    len(text) - lineStart,
		utf16Len:   utf16LenForString(text[lineStart:]),
	})

	return lines
}

// utf16LenForString returns the length of s in UTF-16 code units.
func utf16LenForString(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// utf16ToByteOffset converts a UTF-16 column within line to a byte offset.
// Returns false if the column lands beyond the end of the line or inside a
// surrogate pair.
func utf16ToByteOffset(line string, col int) (int, bool) {
	if col < 0 {
		return 0, false
	}

	units := 0
	for i, r := range line {
		if units == col {
			return i, true
		}
		if units > col {
			// col pointed into the middle of a surrogate pair
			return 0, false
		}
		units += len(utf16.Encode([]rune{r}))
	}
	if units == col {
		return len(line), true
	}
	return 0, false
}

// byteToUTF16Offset converts a byte offset within line to UTF-16 code units.
// The offset is clamped to rune boundaries.
func byteToUTF16Offset(line string, byteOff int) int {
	if byteOff > len(line) {
		byteOff = len(line)
	}
	units := 0
	for i := 0; i < byteOff; {
		r, size := utf8.DecodeRuneInString(line[i:])
		units += len(utf16.Encode([]rune{r}))
		i += size
	}
	return units
}

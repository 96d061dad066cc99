package source

import (
	"fmt"
	"strings"
)

// FileID is the compiler-visible identity of a source file. Pkg is empty for
// files under the world's root; for package files it carries the package
// spec in "@namespace/name:version" form. Path is a slash-separated path
// relative to the root or to the package directory.
type FileID struct {
	Pkg  string
	Path string
}

// IsPackage reports whether the identifier addresses a package file.
func (id FileID) IsPackage() bool {
	return id.Pkg != ""
}

// String returns a debug representation of the identifier.
func (id FileID) String() string {
	if id.Pkg == "" {
		return id.Path
	}
	return id.Pkg + "/" + id.Path
}

// Source is one cached text document: its canonical filesystem path, its
// compiler-visible identifier, the current full text, and a line index
// rebuilt after every mutation.
//
// A Source is not safe for concurrent mutation; the owning Store and world
// serialize access.
type Source struct {
	path  string
	id    FileID
	text  string
	lines []lineInfo
}

// New creates a source holding text for the file at path.
func New(id FileID, path, text string) *Source {
	return &Source{
		path:  path,
		id:    id,
		text:  text,
		lines: buildLineIndex(text),
	}
}

// Path returns the absolute filesystem path.
func (s *Source) Path() string { return s.path }

// ID returns the compiler-visible file identifier.
func (s *Source) ID() FileID { return s.id }

// Text returns the current full text.
func (s *Source) Text() string { return s.text }

// Len returns the text length in bytes.
func (s *Source) Len() int { return len(s.text) }

// LineCount returns the number of lines, counting a trailing newline as
// starting a final empty line.
func (s *Source) LineCount() int { return len(s.lines) }

// Replace substitutes the whole text and rebuilds the line index.
func (s *Source) Replace(text string) {
	s.text = text
	s.lines = buildLineIndex(text)
}

// ByteOffset translates pos into a byte offset over the current text.
// Returns ErrInvalidCoordinate if the line or column is out of bounds.
func (s *Source) ByteOffset(pos Position) (int, error) {
	if pos.Line < 0 || pos.Line >= len(s.lines) {
		return 0, fmt.Errorf("line %d of %d-line source: %w", pos.Line, len(s.lines), ErrInvalidCoordinate)
	}
	line := s.lines[pos.Line]
	content := s.text[line.byteOffset : line.byteOffset+line.byteLen]
	off, ok := utf16ToByteOffset(content, pos.Column)
	if !ok {
		return 0, fmt.Errorf("column %d on line %d (len %d): %w", pos.Column, pos.Line, line.utf16Len, ErrInvalidCoordinate)
	}
	return line.byteOffset + off, nil
}

// PositionFor translates a byte offset back into a Position. Offsets are
// clamped to the text bounds; offsets inside a multi-byte rune snap to its
// start.
func (s *Source) PositionFor(byteOff int) Position {
	if byteOff < 0 {
		byteOff = 0
	}
	if byteOff > len(s.text) {
		byteOff = len(s.text)
	}

	// Last line whose start is at or before the offset.
	lineNum := len(s.lines) - 1
	for i, line := range s.lines {
		if byteOff < line.byteOffset {
			lineNum = i - 1
			break
		}
	}
	line := s.lines[lineNum]

	inLine := byteOff - line.byteOffset
	if inLine > line.byteLen {
		inLine = line.byteLen
	}
	content := s.text[line.byteOffset : line.byteOffset+line.byteLen]
	return Position{Line: lineNum, Column: byteToUTF16Offset(content, inLine)}
}

// Edit replaces the text covered by rng with replacement in one atomic
// update. Both endpoints are translated through the current line index. On
// success the returned ByteRange is the span the replacement occupies in the
// new text. On failure the stored text is unchanged.
//
// An empty range with an empty replacement is a valid no-op.
func (s *Source) Edit(rng Range, replacement string) (ByteRange, error) {
	start, err := s.ByteOffset(rng.Start)
	if err != nil {
		return ByteRange{}, err
	}
	end, err := s.ByteOffset(rng.End)
	if err != nil {
		return ByteRange{}, err
	}
	if start > end {
		return ByteRange{}, fmt.Errorf("range start %d after end %d: %w", start, end, ErrInvalidCoordinate)
	}

	var b strings.Builder
	b.Grow(len(s.text) - (end - start) + len(replacement))
	b.WriteString(s.text[:start])
	b.WriteString(replacement)
	b.WriteString(s.text[end:])

	s.text = b.String()
	s.lines = buildLineIndex(s.text)

	return ByteRange{Start: start, End: start + len(replacement)}, nil
}

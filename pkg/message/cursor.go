package message

import (
	"fmt"
	"unicode/utf8"
)

// Position is a location in a source text. Index is a byte offset; Line and
// Column are 1-based, with Column counted in runes.
type Position struct {
	Index  int
	Line   int
	Column int
}

// PositionAt computes the position of byte index in text by scanning
// everything before it.
func PositionAt(text string, index int) Position {
	if index > len(text) {
		index = len(text)
	}
	if index < 0 {
		index = 0
	}
	pos := Position{Index: index, Line: 1, Column: 1}
	for _, r := range text[:index] {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Cursor is a span of source text used for diagnostics. It carries the whole
// text so a renderer can show the offending line.
type Cursor struct {
	Start    Position
	End      Position
	FileName string
	Text     string
}

// NewCursor returns an empty cursor at the start of text.
func NewCursor(fileName, text string) Cursor {
	start := Position{Line: 1, Column: 1}
	return Cursor{Start: start, End: start, FileName: fileName, Text: text}
}

// Span returns a cursor over the byte range [start, end) of the same text.
func (c Cursor) Span(start, end int) Cursor {
	return Cursor{
		Start:    PositionAt(c.Text, start),
		End:      PositionAt(c.Text, end),
		FileName: c.FileName,
		Text:     c.Text,
	}
}

// Merge returns the span from the start of c to the end of other.
func (c Cursor) Merge(other Cursor) Cursor {
	c.End = other.End
	return c
}

// Slice returns the source text covered by the cursor.
func (c Cursor) Slice() string {
	if c.Start.Index > c.End.Index || c.End.Index > len(c.Text) {
		return ""
	}
	return c.Text[c.Start.Index:c.End.Index]
}

// Line returns the full text of the line the cursor starts on, without the
// trailing newline.
func (c Cursor) Line() string {
	start := c.Start.Index
	for start > 0 && c.Text[start-1] != '\n' {
		start--
	}
	end := c.Start.Index
	for end < len(c.Text) && c.Text[end] != '\n' {
		end++
	}
	return c.Text[start:end]
}

// Width is the number of runes covered on the starting line, at least one.
func (c Cursor) Width() int {
	if c.End.Line != c.Start.Line {
		return utf8.RuneCountInString(c.Line()) - c.Start.Column + 2
	}
	if w := c.End.Column - c.Start.Column; w > 0 {
		return w
	}
	return 1
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s:%s", c.FileName, c.Start)
}

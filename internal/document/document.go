// Package document models blueprint text as lines and byte offsets and takes
// cursor snapshots inside it.
//
// All offsets and columns are byte based. Editor positions expressed in UTF-16
// code units are converted before they reach this package.
package document

import (
	"sort"
	"strings"
)

const defaultIndentation = 2

// Position is a zero based line and byte column.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Document is an immutable, normalized view of a blueprint's text.
type Document struct {
	text       string
	lines      []string
	starts     []int
	fileIndent int
}

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// New builds a Document from raw text. Line endings are normalized first so
// that offsets computed here agree with the ones the parser reports.
func New(text string) *Document {
	text = Normalize(text)
	lines := strings.Split(text, "\n")
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1
	}
	return &Document{
		text:       text,
		lines:      lines,
		starts:     starts,
		fileIndent: detectIndentation(lines),
	}
}

// Text returns the normalized text.
func (d *Document) Text() string { return d.text }

// Len is the length of the normalized text in bytes.
func (d *Document) Len() int { return len(d.text) }

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the text of line i, or "" when i is out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// LineStart returns the offset of the first byte of line i, clamped to the
// document.
func (d *Document) LineStart(i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(d.starts) {
		return len(d.text)
	}
	return d.starts[i]
}

// FileIndentation is the first non-zero indentation found in the file, or 2.
func (d *Document) FileIndentation() int { return d.fileIndent }

// Offset is the character offset of p: the lengths of all earlier lines, each
// plus one for its newline, plus p.Character. No clamping happens on the
// character, so offsets past the end of a line are returned as is.
func (d *Document) Offset(p Position) int {
	if p.Line < 0 {
		return p.Character
	}
	if p.Line < len(d.starts) {
		return d.starts[p.Line] + p.Character
	}
	return len(d.text) + 1 + p.Character
}

// LineForOffset returns the line containing offset. Offsets before the start
// map to line 0, offsets past the end map to the last line.
func (d *Document) LineForOffset(offset int) int {
	if offset <= 0 {
		return 0
	}
	i := sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > offset })
	return i - 1
}

// PositionForOffset is the inverse of Offset for offsets inside the document.
func (d *Document) PositionForOffset(offset int) Position {
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := d.LineForOffset(offset)
	return Position{Line: line, Character: offset - d.LineStart(line)}
}

// Column returns the column of offset within its line.
func (d *Document) Column(offset int) int {
	return d.PositionForOffset(offset).Character
}

// Indentation counts leading blanks (spaces and tabs).
func Indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// detectIndentation returns the first positive, even indentation in lines.
func detectIndentation(lines []string) int {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := Indentation(line); n > 0 && n%2 == 0 {
			return n
		}
	}
	return defaultIndentation
}

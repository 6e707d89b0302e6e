package document

import "strings"

// Cursor is a snapshot of the editor cursor and the facts derived from it.
// It is computed once per request; a new keystroke means a new Cursor.
type Cursor struct {
	Position
	// Offset is the character offset of the cursor in the document.
	Offset int `json:"offset"`
	// Text is the current line. Out of range lines are empty.
	Text            string   `json:"text"`
	PreviousText    string   `json:"previous_text"`
	Indentation     int      `json:"indentation"`
	FileIndentation int      `json:"file_indentation"`
	Word            string   `json:"word"`
	Words           []string `json:"words"`
	LineCount       int      `json:"line_count"`
}

// Cursor takes a snapshot at p.
func (d *Document) Cursor(p Position) Cursor {
	line := d.Line(p.Line)
	return Cursor{
		Position:        p,
		Offset:          d.Offset(p),
		Text:            line,
		PreviousText:    d.Line(p.Line - 1),
		Indentation:     Indentation(line),
		FileIndentation: d.fileIndent,
		Word:            wordAt(line, p.Character),
		Words:           strings.Fields(line),
		LineCount:       d.LineCount(),
	}
}

// IndentLevel is the indentation expressed in units of the file indentation.
func (c Cursor) IndentLevel() int {
	if c.FileIndentation <= 0 {
		return c.Indentation / defaultIndentation
	}
	return c.Indentation / c.FileIndentation
}

// Prefix returns the current line up to the cursor.
func (c Cursor) Prefix() string {
	if c.Character <= 0 {
		return ""
	}
	if c.Character >= len(c.Text) {
		return c.Text
	}
	return c.Text[:c.Character]
}

// Blank reports whether the current line holds only whitespace.
func (c Cursor) Blank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// wordAt returns the text from character up to the next whitespace, after
// skipping leading whitespace.
func wordAt(line string, character int) string {
	if character < 0 || character >= len(line) {
		return ""
	}
	rest := strings.TrimLeft(line[character:], " \t")
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		return rest[:i]
	}
	return rest
}

// Package sitteradapter converts between the editor's positions, counted in
// UTF-16 code units, and the byte positions used by the parser and the
// blueprint resolver.
package sitteradapter

import (
	"fmt"
	"strings"

	lsp "github.com/tliron/glsp/protocol_3_16"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
)

// ToDocument converts an LSP position into a byte position of doc. Lines
// past the end are kept as they are so that the resolver sees an out of
// range cursor.
func ToDocument(doc *document.Document, pos lsp.Position) document.Position {
	line := int(pos.Line)
	if line >= doc.LineCount() {
		return document.Position{Line: line, Character: int(pos.Character)}
	}
	return document.Position{Line: line, Character: byteColumn(doc.Line(line), pos.Character)}
}

// ToProtocol converts a byte position of doc into an LSP position.
func ToProtocol(doc *document.Document, pos document.Position) lsp.Position {
	return lsp.Position{Line: uint32(pos.Line), Character: uint32(utf16Column(doc.Line(pos.Line), pos.Character))}
}

// Range converts a byte range of doc into an LSP range.
func Range(doc *document.Document, start, end document.Position) lsp.Range {
	return lsp.Range{Start: ToProtocol(doc, start), End: ToProtocol(doc, end)}
}

// Columns returns a converter from byte columns of doc's lines into UTF-16
// columns, in the shape semantic token encoding expects.
func Columns(doc *document.Document) func(line, byteCol int) int {
	return func(line, byteCol int) int {
		return utf16Column(doc.Line(line), byteCol)
	}
}

// byteColumn walks line until character UTF-16 units have been consumed.
func byteColumn(line string, character uint32) int {
	var units uint32
	for i, r := range line {
		n := uint32(1)
		if r > 0xFFFF {
			n = 2
		}
		if units+n > character {
			return i
		}
		units += n
	}
	return len(line)
}

// utf16Column counts the UTF-16 units in the first byteCol bytes of line.
func utf16Column(line string, byteCol int) int {
	if byteCol > len(line) {
		byteCol = len(line)
	}
	if byteCol < 0 {
		byteCol = 0
	}
	units := 0
	for _, r := range line[:byteCol] {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return units
}

// positionToOffset computes the byte offset of an LSP position in raw
// document text. Lines past the end clamp to the last line.
func positionToOffset(text string, pos lsp.Position) int {
	lines := strings.Split(text, "\n")
	line := int(pos.Line)
	if line >= len(lines) {
		return len(text)
	}
	offset := 0
	for i := 0; i < line; i++ {
		offset += len(lines[i]) + 1
	}
	// a carriage return ending the line is not addressable
	return offset + byteColumn(strings.TrimSuffix(lines[line], "\r"), pos.Character)
}

// ApplyChange applies one didChange content change to text. Ranged changes
// are spliced in; whole-document changes replace the text.
func ApplyChange(text string, change any) (string, error) {
	switch c := change.(type) {
	case lsp.TextDocumentContentChangeEvent:
		if c.Range == nil {
			return c.Text, nil
		}
		start := positionToOffset(text, c.Range.Start)
		end := positionToOffset(text, c.Range.End)
		if end < start {
			start, end = end, start
		}
		return text[:start] + c.Text + text[end:], nil
	case lsp.TextDocumentContentChangeEventWhole:
		return c.Text, nil
	}
	return text, fmt.Errorf("unsupported content change %T", change)
}

package blueprint

import (
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

// Section is the stretch of text owned by one recognized top-level key.
// It runs from the key up to the next top-level key. The last section is
// open and extends to the end of the document.
type Section struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Open  bool   `json:"open,omitempty"`

	pair *parser.Node
}

// Contains reports whether offset is inside the section.
func (s Section) Contains(offset int) bool {
	if offset < s.Start {
		return false
	}
	return s.Open || offset < s.End
}

// Raw returns the section's slice of text.
func (s Section) Raw(text string) string {
	start, end := s.Start, s.End
	if s.Open || end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}
	return text[start:end]
}

// Pair is the top-level pair the section was built from.
func (s Section) Pair() *parser.Node { return s.pair }

// Sections lists the recognized top-level sections of root in document
// order. Unrecognized top-level keys still end the section before them.
func Sections(root *parser.Node, docLen int) []Section {
	var sections []Section
	for w := range siblings(root) {
		name := w.cur.KeyText()
		if !registry.IsTopLevel(name) {
			continue
		}
		s := Section{Name: name, Start: w.cur.Range.Start, End: w.end(docLen), pair: w.cur}
		s.Open = w.next == nil
		sections = append(sections, s)
	}
	return sections
}

// sectionSpan decides the extent of the section in w as seen from offset:
//
//   - the last pair, with the cursor past its key, runs to the end of the
//     document;
//   - a cursor no further than one past the value stays with the pair;
//   - otherwise the pair reaches one past the start of the next key.
//
// The span never reaches into the next key, so adjacent spans never overlap.
func sectionSpan(w window, offset, docLen int) (Section, bool) {
	p := w.cur
	s := Section{Name: p.KeyText(), Start: p.Range.Start, pair: p}

	valueEnd := p.Range.End
	if p.Value != nil && p.Value.Range.End > valueEnd {
		valueEnd = p.Value.Range.End
	}

	switch {
	case w.next == nil && offset > p.Range.KeyEnd:
		s.End, s.Open = docLen, true
		return s, true
	case offset <= valueEnd+1:
		s.End = valueEnd + 2
	case w.next != nil && offset <= w.next.Range.Start:
		s.End = w.next.Range.Start + 1
	default:
		return Section{}, false
	}
	if w.next != nil && s.End > w.next.Range.Start {
		s.End = w.next.Range.Start
	}
	return s, true
}

// currentSection finds the section holding the cursor. Ties go to the
// earlier pair.
func currentSection(root *parser.Node, cur document.Cursor, docLen int) *Section {
	for w := range siblings(root) {
		if !registry.IsTopLevel(w.cur.KeyText()) {
			continue
		}
		s, ok := sectionSpan(w, cur.Offset, docLen)
		if !ok || !s.Contains(cur.Offset) {
			continue
		}
		if s.Name == registry.Description && leftDescription(w.cur, cur) {
			return nil
		}
		return &s
	}
	return nil
}

// leftDescription reports whether a cursor at column zero sits below a
// multi-line description, which means a new top-level entry is being started.
func leftDescription(pair *parser.Node, cur document.Cursor) bool {
	v := pair.Value
	if v == nil || v.Kind != parser.KindScalar || !v.Style.Block() {
		return false
	}
	return len(v.Text) > 1 && cur.Indentation < 1
}

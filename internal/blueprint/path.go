package blueprint

import (
	"strings"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
)

// Frame is one pair enclosing the cursor, outermost first.
type Frame struct {
	Key  string
	Pair *parser.Node
}

// YAMLPath joins keys outermost first, each followed by a dot, as in
// "inputs.region.". An empty path renders as "".
func YAMLPath(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return strings.Join(keys, ".") + "."
}

// enclosingPairs walks from the current section down to the innermost pair
// that holds the cursor.
func enclosingPairs(doc *document.Document, s Section, cur document.Cursor) []Frame {
	frames := []Frame{{Key: s.Name, Pair: s.pair}}
	limit := s.End
	if s.Open {
		limit = doc.Len() + 1
	}
	return descend(doc, s.pair.Value, cur, limit, frames)
}

func descend(doc *document.Document, n *parser.Node, cur document.Cursor, limit int, frames []Frame) []Frame {
	if n == nil {
		return frames
	}
	switch n.Kind {
	case parser.KindMapping:
		for w := range siblings(n) {
			p := w.cur
			if p.Kind != parser.KindPair || p.Key == nil {
				continue
			}
			end := w.end(limit)
			if enclosesCursor(doc, p, cur, end) {
				return descend(doc, p.Value, cur, end, append(frames, Frame{Key: p.KeyText(), Pair: p}))
			}
		}
	case parser.KindSequence:
		for w := range siblings(n) {
			end := w.end(limit)
			inside := cur.Offset >= w.cur.Range.Start && cur.Offset < end
			if inside || Contains(w.cur, cur.Offset, doc.Len()) {
				return descend(doc, w.cur, cur, end, frames)
			}
		}
	}
	return frames
}

// enclosesCursor decides whether pair p, owning text up to end, holds the
// cursor. Its value may contain the cursor outright. Failing that, blank
// space after the key belongs to p when the cursor line is indented deeper
// than the key, so a fresh line under "region:" is inside region while one at
// region's own column is back in the parent.
func enclosesCursor(doc *document.Document, p *parser.Node, cur document.Cursor, end int) bool {
	off := cur.Offset
	if off < p.Range.Start || off >= end {
		return false
	}
	if Contains(p.Value, off, doc.Len()) {
		return true
	}
	if off <= p.Range.KeyEnd {
		return false
	}
	return cur.Indentation > doc.Column(p.Range.Start)
}

package blueprint_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
)

func parseTree(t *testing.T, text string) *parser.Tree {
	t.Helper()
	p := parser.NewParser()
	defer p.Close()
	tree, err := p.Parse(context.Background(), []byte(text))
	require.NoError(t, err)
	return tree
}

// resolveAtEnd parses text with tree-sitter and resolves with the cursor at
// the very end of the document.
func resolveAtEnd(t *testing.T, text string) blueprint.Result {
	t.Helper()
	doc := document.New(text)
	return blueprint.Resolve(doc, parseTree(t, doc.Text()), doc.PositionForOffset(doc.Len()), nil)
}

// builder assembles hand-made trees whose offsets point into text. Scalars
// must be requested in document order.
type builder struct {
	text string
	pos  int
}

func (b *builder) scalar(s string) *parser.Node {
	i := strings.Index(b.text[b.pos:], s)
	if i < 0 {
		panic("scalar " + s + " not found after offset")
	}
	start := b.pos + i
	b.pos = start + len(s)
	return parser.NewScalar(s, start, start+len(s))
}

// pair builds key first, then its value.
func (b *builder) pair(key string, value func() *parser.Node) *parser.Node {
	k := b.scalar(key)
	return parser.NewPair(k, value())
}

// nullPair builds "key:" with no value.
func (b *builder) nullPair(key string) *parser.Node {
	k := b.scalar(key)
	return parser.NewPair(k, parser.NewNull(k.Range.End+1))
}

type typeSet map[string]bool

func (s typeSet) Has(t string) bool { return s[t] }

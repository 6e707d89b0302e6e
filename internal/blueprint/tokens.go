package blueprint

import (
	"sort"
	"strings"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

// TokenType indexes TokenTypes.
type TokenType uint32

const (
	TokenKeyword TokenType = iota
	TokenString
	TokenNamespace
	TokenVariable
	TokenClass
	TokenProperty
)

// TokenTypes is the semantic token legend, in TokenType order.
var TokenTypes = []string{"keyword", "string", "namespace", "variable", "class", "property"}

// ModifierDeclaration marks the names declared by inputs and node templates.
const ModifierDeclaration uint32 = 1 << 0

// TokenModifiers is the modifier legend, in bit order.
var TokenModifiers = []string{"declaration"}

// Token is a highlighted stretch of one line, in byte columns.
type Token struct {
	Line      int       `json:"line"`
	Character int       `json:"character"`
	Length    int       `json:"length"`
	Type      TokenType `json:"type"`
	Modifiers uint32    `json:"modifiers,omitempty"`
}

// Tokens highlights the structure of a blueprint: every top-level key, each
// import with the plugin name inside it, and the declared names of inputs and
// node templates together with their fields.
func Tokens(doc *document.Document, tree *parser.Tree) []Token {
	root := rootMapping(tree)
	if root == nil {
		return nil
	}
	e := &emitter{doc: doc}
	for w := range siblings(root) {
		p := w.cur
		if p.Key == nil {
			continue
		}
		e.emit(p.Key.Range.Start, p.Key.Range.End, TokenKeyword, 0)
		switch p.KeyText() {
		case registry.Imports:
			guard("import tokens", func() bool { e.imports(p.Value); return true })
		case registry.Inputs:
			guard("input tokens", func() bool { e.declarations(p.Value, TokenVariable); return true })
		case registry.NodeTemplates:
			guard("node template tokens", func() bool { e.declarations(p.Value, TokenClass); return true })
		}
	}
	sort.SliceStable(e.tokens, func(i, j int) bool {
		a, b := e.tokens[i], e.tokens[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
	return e.tokens
}

type emitter struct {
	doc    *document.Document
	tokens []Token
}

// emit records [start, end) clipped to the line it starts on.
func (e *emitter) emit(start, end int, typ TokenType, mods uint32) {
	if start < 0 || end <= start || start >= e.doc.Len() {
		return
	}
	pos := e.doc.PositionForOffset(start)
	lineEnd := e.doc.LineStart(pos.Line) + len(e.doc.Line(pos.Line))
	if end > lineEnd {
		end = lineEnd
	}
	if end <= start {
		return
	}
	e.tokens = append(e.tokens, Token{
		Line:      pos.Line,
		Character: pos.Character,
		Length:    end - start,
		Type:      typ,
		Modifiers: mods,
	})
}

func (e *emitter) imports(seq *parser.Node) {
	if seq == nil || seq.Kind != parser.KindSequence {
		return
	}
	for _, item := range seq.Items {
		if item == nil {
			continue
		}
		switch item.Kind {
		case parser.KindScalar:
			if item.Null {
				continue
			}
			e.emit(item.Range.Start, item.Range.End, TokenString, 0)
			if imp, ok := ParsePluginImport(item.Text); ok {
				e.within(item.Range, imp.Name, TokenNamespace)
			}
		case parser.KindMapping:
			for _, p := range item.Items {
				if p == nil || p.Key == nil {
					continue
				}
				e.emit(p.Key.Range.Start, p.Key.Range.End, TokenString, 0)
				if p.KeyText() == "plugin" && p.Value != nil && !p.Value.Null {
					e.emit(p.Value.Range.Start, p.Value.Range.End, TokenNamespace, 0)
				}
			}
		}
	}
}

// within emits a token over the first occurrence of text inside r.
func (e *emitter) within(r parser.Range, text string, typ TokenType) {
	if r.End > e.doc.Len() || r.Start > r.End {
		return
	}
	i := strings.Index(e.doc.Text()[r.Start:r.End], text)
	if i < 0 {
		return
	}
	start := r.Start + i
	e.emit(start, start+len(text), typ, 0)
}

func (e *emitter) declarations(m *parser.Node, typ TokenType) {
	if m == nil || m.Kind != parser.KindMapping {
		return
	}
	for _, p := range m.Items {
		if p == nil || p.Key == nil {
			continue
		}
		e.emit(p.Key.Range.Start, p.Key.Range.End, typ, ModifierDeclaration)
		if p.Value == nil || p.Value.Kind != parser.KindMapping {
			continue
		}
		for _, field := range p.Value.Items {
			if field == nil || field.Key == nil {
				continue
			}
			e.emit(field.Key.Range.Start, field.Key.Range.End, TokenProperty, 0)
		}
	}
}

// Encode packs tokens into the relative five-integer form of the LSP
// semantic tokens response. column converts a byte column of a line into the
// client's column unit; nil keeps byte columns.
func Encode(tokens []Token, column func(line, byteCol int) int) []uint32 {
	if column == nil {
		column = func(_, c int) int { return c }
	}
	data := make([]uint32, 0, len(tokens)*5)
	prevLine, prevChar := 0, 0
	for _, t := range tokens {
		char := column(t.Line, t.Character)
		length := column(t.Line, t.Character+t.Length) - char
		deltaLine := t.Line - prevLine
		deltaChar := char
		if deltaLine == 0 {
			deltaChar = char - prevChar
		}
		data = append(data,
			uint32(deltaLine),
			uint32(deltaChar),
			uint32(length),
			uint32(t.Type),
			t.Modifiers,
		)
		prevLine, prevChar = t.Line, char
	}
	return data
}

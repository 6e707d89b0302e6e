// Package parser parses blueprint YAML with tree-sitter into a small ranged
// node tree. Tree-sitter keeps producing a tree for documents that are in the
// middle of being edited, which is the normal state of a file that asks for
// completions.
package parser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/yaml"
)

var lang = yaml.GetLanguage()

// Tree is the result of one parse.
type Tree struct {
	// Root is the top node of the first document, nil for empty input.
	Root *Node
	// HasErrors is set when tree-sitter had to recover from syntax errors.
	HasErrors bool
	// Length is the length of the parsed text.
	Length int
}

// Parser wraps a tree-sitter parser instance. It is safe for concurrent use
// but parses one document at a time.
type Parser struct {
	parser *sitter.Parser
	mu     sync.Mutex
}

// NewParser creates a Parser for YAML.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Parser{parser: p}
}

// Parse parses text and converts the syntax tree into Nodes.
func (p *Parser) Parse(ctx context.Context, text []byte) (*Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.parser == nil {
		return nil, fmt.Errorf("parser is closed")
	}

	source := repair(text)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	c := &converter{src: source, limit: len(text)}
	return &Tree{
		Root:      c.convert(root),
		HasErrors: root.HasError(),
		Length:    len(text),
	}, nil
}

// Close frees any resources held by the Parser.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
	return nil
}

// ParserPool maintains a pool of Parser instances so that concurrent requests
// for different documents do not queue behind a single parser.
type ParserPool struct {
	pool chan *Parser
}

// NewParserPool creates a ParserPool with n Parser instances.
func NewParserPool(n int) *ParserPool {
	if n < 1 {
		n = 1
	}
	pp := &ParserPool{pool: make(chan *Parser, n)}
	for i := 0; i < n; i++ {
		pp.pool <- NewParser()
	}
	return pp
}

// Parse borrows a Parser from the pool for one parse.
func (pp *ParserPool) Parse(ctx context.Context, text []byte) (*Tree, error) {
	var p *Parser
	select {
	case p = <-pp.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { pp.pool <- p }()
	return p.Parse(ctx, text)
}

// Close releases all Parser instances in the pool.
func (pp *ParserPool) Close() error {
	for {
		select {
		case p := <-pp.pool:
			p.Close()
		default:
			return nil
		}
	}
}

// repair patches the last line of a document that is being typed so that it
// parses without pulling the pairs above it into an error node.
func repair(text []byte) []byte {
	return closeFlow(repairTrailingKey(text))
}

// repairTrailingKey appends a ':' to a bare word on the last non-blank line
// when that line starts at column zero, so a top-level key that is still
// being typed parses as a key instead of swallowing the mapping above it.
// The colon goes right after the word, leaving every earlier offset intact.
func repairTrailingKey(text []byte) []byte {
	s := strings.TrimRight(string(text), " \t\n")
	start := strings.LastIndexByte(s, '\n') + 1
	line := s[start:]
	if line == "" || strings.ContainsAny(line, ": \t") {
		return text
	}
	switch line[0] {
	case '#', '-', '{', '[', '"', '\'', '%', '&', '*', '!', '|', '>', '?':
		return text
	}
	repaired := make([]byte, 0, len(text)+1)
	repaired = append(repaired, text[:len(s)]...)
	repaired = append(repaired, ':')
	return append(repaired, text[len(s):]...)
}

// closeFlow closes the flow mappings and sequences left open on the last
// non-blank line, as in "p: { get_input: ". The closers go right after the
// last non-blank character so earlier offsets stay intact.
func closeFlow(text []byte) []byte {
	s := strings.TrimRight(string(text), " \t\n")
	start := strings.LastIndexByte(s, '\n') + 1
	closers := unclosed(s[start:])
	if closers == "" {
		return text
	}
	repaired := make([]byte, 0, len(text)+len(closers)+1)
	repaired = append(repaired, text[:len(s)]...)
	repaired = append(repaired, ' ')
	repaired = append(repaired, closers...)
	return append(repaired, text[len(s):]...)
}

// unclosed returns what it takes to close the quotes and flow collections
// still open at the end of line, innermost first.
func unclosed(line string) string {
	var (
		open  []byte
		quote byte
	)
scan:
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if quote != 0 {
			switch {
			case ch == '\\' && quote == '"':
				i++
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			if i == 0 || strings.IndexByte(" \t{[,:", line[i-1]) >= 0 {
				quote = ch
			}
		case '#':
			if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
				break scan
			}
		case '{', '[':
			open = append(open, ch)
		case '}', ']':
			if n := len(open); n > 0 && closerOf(open[n-1]) == ch {
				open = open[:n-1]
			}
		}
	}
	if len(open) == 0 {
		return ""
	}
	var b strings.Builder
	if quote != 0 {
		b.WriteByte(quote)
	}
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteByte(closerOf(open[i]))
	}
	return b.String()
}

func closerOf(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}

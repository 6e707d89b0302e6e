package parser

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// converter turns a tree-sitter YAML syntax tree into Nodes. Offsets are
// clamped to limit, the length of the text the caller handed in, because
// the parsed source may carry a repair suffix.
type converter struct {
	src   []byte
	limit int
}

func (c *converter) clamp(offset int) int {
	if offset > c.limit {
		return c.limit
	}
	return offset
}

func (c *converter) span(n *sitter.Node) (int, int) {
	return c.clamp(int(n.StartByte())), c.clamp(int(n.EndByte()))
}

func (c *converter) convert(n *sitter.Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "stream", "document":
		return c.first(n)
	case "block_node", "flow_node":
		return c.content(n)
	case "block_mapping":
		return c.mapping(n, "block_mapping_pair")
	case "flow_mapping":
		return c.mapping(n, "flow_pair")
	case "block_mapping_pair", "flow_pair":
		return c.pair(n)
	case "block_sequence":
		return c.blockSequence(n)
	case "flow_sequence":
		return c.flowSequence(n)
	case "plain_scalar", "double_quote_scalar", "single_quote_scalar", "block_scalar", "alias":
		return c.scalar(n)
	case "ERROR":
		return c.salvage(n)
	}
	return nil
}

// first converts the first child that yields a node.
func (c *converter) first(n *sitter.Node) *Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if node := c.convert(n.NamedChild(i)); node != nil {
			return node
		}
	}
	return nil
}

// content skips properties (anchors, tags) and comments in front of the
// actual content of a block or flow node.
func (c *converter) content(n *sitter.Node) *Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "anchor", "tag", "comment":
			continue
		}
		return c.convert(child)
	}
	return nil
}

func (c *converter) mapping(n *sitter.Node, pairType string) *Node {
	m := &Node{Kind: KindMapping}
	m.Range.Start, m.Range.End = c.span(n)
	m.Range.KeyEnd = m.Range.End
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case pairType:
			if p := c.pair(child); p != nil {
				m.Items = append(m.Items, p)
			}
		case "flow_node":
			// a flow mapping entry written without ": value"
			if key := c.convert(child); key != nil {
				p := NewPair(key, NewNull(key.Range.End))
				m.Items = append(m.Items, p)
			}
		case "ERROR":
			if s := c.salvage(child); s != nil && s.Kind == KindMapping {
				m.Items = append(m.Items, s.Items...)
			}
		}
	}
	return m
}

func (c *converter) pair(n *sitter.Node) *Node {
	p := &Node{Kind: KindPair}
	p.Range.Start, p.Range.End = c.span(n)
	p.Range.KeyEnd = p.Range.Start
	if key := n.ChildByFieldName("key"); key != nil {
		p.Key = c.convert(key)
	}
	if p.Key != nil {
		p.Range.KeyEnd = p.Key.Range.End
	}
	if value := n.ChildByFieldName("value"); value != nil {
		p.Value = c.convert(value)
	}
	if p.Value == nil {
		p.Value = NewNull(p.Range.End)
	}
	return p
}

func (c *converter) blockSequence(n *sitter.Node) *Node {
	s := &Node{Kind: KindSequence}
	s.Range.Start, s.Range.End = c.span(n)
	s.Range.KeyEnd = s.Range.End
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "block_sequence_item" {
			continue
		}
		item := c.first(child)
		if item == nil {
			_, end := c.span(child)
			item = NewNull(end)
		}
		s.Items = append(s.Items, item)
	}
	return s
}

func (c *converter) flowSequence(n *sitter.Node) *Node {
	s := &Node{Kind: KindSequence}
	s.Range.Start, s.Range.End = c.span(n)
	s.Range.KeyEnd = s.Range.End
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "flow_node":
			if item := c.convert(child); item != nil {
				s.Items = append(s.Items, item)
			}
		case "flow_pair":
			if p := c.pair(child); p != nil {
				s.Items = append(s.Items, NewMapping(p))
			}
		}
	}
	return s
}

func (c *converter) scalar(n *sitter.Node) *Node {
	raw := n.Content(c.src)
	s := &Node{Kind: KindScalar}
	s.Range.Start, s.Range.End = c.span(n)
	s.Range.KeyEnd = s.Range.End
	switch n.Type() {
	case "plain_scalar":
		s.Text = raw
		s.Null = isNull(raw)
	case "double_quote_scalar":
		s.Style = StyleDoubleQuoted
		if text, err := strconv.Unquote(raw); err == nil {
			s.Text = text
		} else {
			s.Text = strings.Trim(raw, `"`)
		}
	case "single_quote_scalar":
		s.Style = StyleSingleQuoted
		s.Text = strings.ReplaceAll(strings.Trim(raw, "'"), "''", "'")
	case "block_scalar":
		s.Style = StyleFolded
		if strings.HasPrefix(raw, "|") {
			s.Style = StyleLiteral
		}
		s.Text = blockBody(raw)
	default:
		s.Text = raw
	}
	return s
}

// salvage recovers what it can from an ERROR node: the pairs directly below
// it, or else the first child that converts.
func (c *converter) salvage(n *sitter.Node) *Node {
	var pairs []*Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "block_mapping_pair" || child.Type() == "flow_pair" {
			if p := c.pair(child); p != nil {
				pairs = append(pairs, p)
			}
		}
	}
	if len(pairs) > 0 {
		return NewMapping(pairs...)
	}
	return c.first(n)
}

// blockBody drops the header line of a block scalar and the common
// indentation of its content lines.
func blockBody(raw string) string {
	nl := strings.IndexByte(raw, '\n')
	if nl < 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(raw[nl+1:], "\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}
	return strings.Join(lines, "\n")
}

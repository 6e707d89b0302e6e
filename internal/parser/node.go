package parser

// Kind is the structural kind of a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
	KindPair
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindPair:
		return "pair"
	}
	return "unknown"
}

// Style records how a scalar was written.
type Style int

const (
	StylePlain Style = iota
	StyleDoubleQuoted
	StyleSingleQuoted
	StyleLiteral
	StyleFolded
)

// Block reports whether the scalar is a block literal or folded scalar.
func (s Style) Block() bool {
	return s == StyleLiteral || s == StyleFolded
}

// Range holds byte offsets into the source. For a Pair, KeyEnd is where the
// key stops; for every other kind KeyEnd equals End.
type Range struct {
	Start  int `json:"start"`
	KeyEnd int `json:"key_end"`
	End    int `json:"end"`
}

// Contains reports whether offset lies within [Start, End].
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// Node is one element of the ranged YAML tree.
//
// Pairs carry Key and Value. A pair written without a value gets a null
// scalar positioned at the end of the pair, so Value is only nil on trees
// assembled by hand.
type Node struct {
	Kind  Kind    `json:"kind"`
	Key   *Node   `json:"key,omitempty"`
	Value *Node   `json:"value,omitempty"`
	Items []*Node `json:"items,omitempty"`
	Text  string  `json:"text,omitempty"`
	Null  bool    `json:"null,omitempty"`
	Style Style   `json:"style,omitempty"`
	Range Range   `json:"range"`
}

// KeyText returns the key of a pair, or "" for anything else.
func (n *Node) KeyText() string {
	if n == nil || n.Kind != KindPair || n.Key == nil {
		return ""
	}
	return n.Key.Text
}

// Pair returns the first pair of a mapping with the given key.
func (n *Node) Pair(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	for _, item := range n.Items {
		if item != nil && item.KeyText() == key {
			return item
		}
	}
	return nil
}

// Get returns the value stored under key in a mapping.
func (n *Node) Get(key string) *Node {
	if p := n.Pair(key); p != nil {
		return p.Value
	}
	return nil
}

// Keys lists the keys of a mapping in document order. Pairs without a usable
// key are skipped.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		if k := item.KeyText(); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Scalar returns the text of a non-null scalar and whether n is one.
func (n *Node) Scalar() (string, bool) {
	if n == nil || n.Kind != KindScalar || n.Null {
		return "", false
	}
	return n.Text, true
}

// NewScalar builds a plain scalar covering [start, end).
func NewScalar(text string, start, end int) *Node {
	return &Node{Kind: KindScalar, Text: text, Null: isNull(text), Range: Range{Start: start, KeyEnd: end, End: end}}
}

// NewNull builds an empty null scalar at offset.
func NewNull(offset int) *Node {
	return &Node{Kind: KindScalar, Null: true, Range: Range{Start: offset, KeyEnd: offset, End: offset}}
}

// NewPair builds a pair from key and value, deriving its range from both.
func NewPair(key, value *Node) *Node {
	p := &Node{Kind: KindPair, Key: key, Value: value}
	switch {
	case key != nil:
		p.Range = Range{Start: key.Range.Start, KeyEnd: key.Range.End, End: key.Range.End}
	case value != nil:
		p.Range = Range{Start: value.Range.Start, KeyEnd: value.Range.Start, End: value.Range.End}
	}
	if value != nil && value.Range.End > p.Range.End {
		p.Range.End = value.Range.End
	}
	return p
}

// NewMapping builds a mapping spanning its items.
func NewMapping(items ...*Node) *Node {
	return newCollection(KindMapping, items)
}

// NewSequence builds a sequence spanning its items.
func NewSequence(items ...*Node) *Node {
	return newCollection(KindSequence, items)
}

func newCollection(kind Kind, items []*Node) *Node {
	n := &Node{Kind: kind, Items: items}
	first := true
	for _, item := range items {
		if item == nil {
			continue
		}
		if first || item.Range.Start < n.Range.Start {
			n.Range.Start = item.Range.Start
		}
		if first || item.Range.End > n.Range.End {
			n.Range.End = item.Range.End
		}
		first = false
	}
	n.Range.KeyEnd = n.Range.End
	return n
}

func isNull(text string) bool {
	switch text {
	case "", "~", "null", "Null", "NULL":
		return true
	}
	return false
}

package blueprint

import (
	"regexp"
	"slices"
	"strings"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

// TypeIndex answers whether the properties of a node type are known.
type TypeIndex interface {
	Has(nodeType string) bool
}

// InputField describes a cursor inside an input declaration.
type InputField struct {
	Input string `json:"input"`
	// Field is set when the cursor is on the value of one of the input's
	// scalar fields. Empty means a field name is expected.
	Field   string   `json:"field,omitempty"`
	Type    string   `json:"type,omitempty"`
	Present []string `json:"present,omitempty"`
}

// TemplatePosition tells which part of a node template the cursor is in.
type TemplatePosition string

const (
	TemplateKeyword    TemplatePosition = "keyword"
	TemplateType       TemplatePosition = "type"
	TemplateProperties TemplatePosition = "properties"
)

// NodeTemplateField describes a cursor inside a node template.
type NodeTemplateField struct {
	Template string           `json:"template"`
	Position TemplatePosition `json:"position"`
	Type     string           `json:"type,omitempty"`
	Present  []string         `json:"present,omitempty"`
	// Known is set when the template's type has properties in the
	// imported node type cache.
	Known bool `json:"known,omitempty"`
}

// Classifiers are the completion contexts that apply at the cursor. They are
// independent of each other; several may hold at once.
type Classifiers struct {
	ImportItem   bool               `json:"import_item,omitempty"`
	PluginImport bool               `json:"plugin_import,omitempty"`
	Input        *InputField        `json:"input,omitempty"`
	NodeTemplate *NodeTemplateField `json:"node_template,omitempty"`
	Intrinsic    bool               `json:"intrinsic,omitempty"`
	Function     string             `json:"function,omitempty"`
	GetInput     bool               `json:"get_input,omitempty"`
	GetProperty  bool               `json:"get_property,omitempty"`
	NewTopLevel  bool               `json:"new_top_level,omitempty"`
}

var (
	importItemLine   = regexp.MustCompile(`^\s{0,4}-`)
	pluginImportLine = regexp.MustCompile(`^\s{0,4}-\s*plugin:`)
	intrinsicOpen    = regexp.MustCompile(`\{\s*(` + registry.IntrinsicNamePattern + `):`)
	intrinsicCall    = regexp.MustCompile(`(` + registry.IntrinsicNamePattern + `):`)
)

type situation struct {
	doc     *document.Document
	cursor  document.Cursor
	section string
	frames  []Frame
	types   TypeIndex
}

func classify(s situation) Classifiers {
	var c Classifiers
	c.NewTopLevel = guard("new top-level entry", func() bool { return isNewTopLevelEntry(s.cursor) })

	if s.section == registry.Imports {
		c.ImportItem = guard("import list item", func() bool { return importItemLine.MatchString(s.cursor.Text) })
		c.PluginImport = guard("plugin import", func() bool { return pluginImportLine.MatchString(s.cursor.Text) })
	}

	c.Intrinsic = guard("intrinsic function", func() bool { return isIntrinsic(s.cursor) })
	if c.Intrinsic {
		c.Function = guard("intrinsic function name", func() string { return functionAt(s.cursor) })
		c.GetInput = c.Function == "get_input"
		c.GetProperty = c.Function == "get_property" || c.Function == "get_attribute"
	}

	c.Input = guard("input field", func() *InputField { return classifyInput(s) })
	c.NodeTemplate = guard("node template field", func() *NodeTemplateField { return classifyNodeTemplate(s) })
	return c
}

// isNewTopLevelEntry holds on an empty line that is either the first line
// or follows another blank line.
func isNewTopLevelEntry(c document.Cursor) bool {
	if c.Text != "" {
		return false
	}
	return c.Line == 0 || c.LineCount == 1 || strings.TrimSpace(c.PreviousText) == ""
}

// isIntrinsic looks for a { } expression on the cursor line. Mid-edit lines
// rarely parse, so this works on the words of the line: a lone "{}", a "{"
// with a later "}", a word under the cursor holding "{}", or a brace just
// opened in front of a function name.
func isIntrinsic(c document.Cursor) bool {
	for i, w := range c.Words {
		if w == "{}" {
			return true
		}
		if w == "{" && slices.Contains(c.Words[i+1:], "}") {
			return true
		}
	}
	if strings.Contains(c.Word, "{}") {
		return true
	}
	return intrinsicOpen.MatchString(c.Text)
}

// functionAt returns the intrinsic function whose arguments the cursor is
// in: the last one named before the cursor, or else the first on the line.
func functionAt(c document.Cursor) string {
	if m := intrinsicCall.FindAllStringSubmatch(c.Prefix(), -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	if m := intrinsicCall.FindStringSubmatch(c.Text); m != nil {
		return m[1]
	}
	return ""
}

// fieldOnLine returns the field the cursor line starts with when the cursor
// is past its colon.
func fieldOnLine(c document.Cursor, fields []string) string {
	trimmed := strings.TrimSpace(c.Text)
	for _, f := range fields {
		if !strings.HasPrefix(trimmed, f+":") {
			continue
		}
		if c.Character > c.Indentation+len(f) {
			return f
		}
	}
	return ""
}

// typingKey reports whether the cursor is on a line that holds at most a
// partial key.
func typingKey(c document.Cursor) bool {
	return !strings.Contains(c.Prefix(), ":")
}

func classifyInput(s situation) *InputField {
	if s.section != registry.Inputs || len(s.frames) < 2 {
		return nil
	}
	input := s.frames[1]
	decl := input.Pair.Value
	f := &InputField{
		Input:   input.Key,
		Type:    scalarText(decl.Get("type")),
		Present: presentExcept(decl, s.doc, s.cursor),
	}
	level := s.cursor.IndentLevel()
	switch {
	case level == 2 && fieldOnLine(s.cursor, registry.InputValueFields) != "":
		f.Field = fieldOnLine(s.cursor, registry.InputValueFields)
		return f
	case level == 2 && typingKey(s.cursor):
		return f
	}
	return nil
}

func classifyNodeTemplate(s situation) *NodeTemplateField {
	if s.section != registry.NodeTemplates || len(s.frames) < 2 {
		return nil
	}
	tpl := s.frames[1]
	body := tpl.Pair.Value
	f := &NodeTemplateField{
		Template: tpl.Key,
		Type:     scalarText(body.Get("type")),
		Present:  presentExcept(body, s.doc, s.cursor),
	}
	level := s.cursor.IndentLevel()
	switch {
	case level == 2 && fieldOnLine(s.cursor, []string{"type"}) != "":
		f.Position = TemplateType
	case level == 2 && typingKey(s.cursor):
		f.Position = TemplateKeyword
	case level == 3 && len(s.frames) >= 3 && s.frames[2].Key == "properties" && typingKey(s.cursor):
		f.Position = TemplateProperties
		f.Known = f.Type != "" && s.types != nil && s.types.Has(f.Type)
	default:
		return nil
	}
	return f
}

func scalarText(n *parser.Node) string {
	text, _ := n.Scalar()
	return text
}

// presentExcept lists the keys of mapping m, leaving out a key that sits on
// the cursor line since that one is still being typed.
func presentExcept(m *parser.Node, doc *document.Document, cur document.Cursor) []string {
	if m == nil || m.Kind != parser.KindMapping {
		return nil
	}
	var keys []string
	for _, item := range m.Items {
		k := item.KeyText()
		if k == "" {
			continue
		}
		if doc.LineForOffset(item.Range.Start) == cur.Line {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

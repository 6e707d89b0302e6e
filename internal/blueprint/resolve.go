package blueprint

import (
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

// Result is everything known about one cursor position. It is built fresh
// for every request and never modified afterwards.
type Result struct {
	// Parsed is false when no usable tree was available. Only the cursor
	// facts and the line based classifiers are meaningful then.
	Parsed bool `json:"parsed"`

	Section     string          `json:"section"`
	Path        []string        `json:"path,omitempty"`
	Sections    []Section       `json:"sections,omitempty"`
	Cursor      document.Cursor `json:"cursor"`
	Classifiers Classifiers     `json:"classifiers"`

	// TopLevel lists top-level keys already written, except one on the
	// cursor line.
	TopLevel      []string `json:"top_level,omitempty"`
	Inputs        []string `json:"inputs,omitempty"`
	NodeTemplates []string `json:"node_templates,omitempty"`
	Plugins       []Import `json:"plugins,omitempty"`

	raw    map[string]string
	frames []Frame
}

// YAMLPath renders Path as "outer.inner.".
func (r Result) YAMLPath() string { return YAMLPath(r.Path) }

// Raw returns the raw text of a top-level section, "" when absent.
func (r Result) Raw(section string) string { return r.raw[section] }

// Frames returns the pairs enclosing the cursor, outermost first.
func (r Result) Frames() []Frame { return r.frames }

// Resolve computes the Result for a cursor at pos. tree may be nil when
// the document could not be parsed; types may be nil when no node types have
// been imported. Resolve never fails: a step that cannot make sense of the
// tree leaves its part of the Result empty.
func Resolve(doc *document.Document, tree *parser.Tree, pos document.Position, types TypeIndex) Result {
	cur := doc.Cursor(pos)
	r := Result{Cursor: cur}

	root := rootMapping(tree)
	if root == nil {
		r.Classifiers = classify(situation{doc: doc, cursor: cur, types: types})
		return r
	}
	r.Parsed = true

	docLen := doc.Len()
	r.Sections = guard("sections", func() []Section { return Sections(root, docLen) })
	r.raw = make(map[string]string, len(r.Sections))
	for _, s := range r.Sections {
		if _, dup := r.raw[s.Name]; !dup {
			r.raw[s.Name] = s.Raw(doc.Text())
		}
	}
	r.TopLevel = presentExcept(root, doc, cur)
	r.Inputs = root.Get(registry.Inputs).Keys()
	r.NodeTemplates = root.Get(registry.NodeTemplates).Keys()
	r.Plugins = guard("imports", func() []Import { return ImportedPlugins(root) })

	if s := guard("current section", func() *Section { return currentSection(root, cur, docLen) }); s != nil {
		r.Section = s.Name
		r.frames = guard("yaml path", func() []Frame { return enclosingPairs(doc, *s, cur) })
		for _, f := range r.frames {
			r.Path = append(r.Path, f.Key)
		}
	}

	r.Classifiers = classify(situation{
		doc:     doc,
		cursor:  cur,
		section: r.Section,
		frames:  r.frames,
		types:   types,
	})
	return r
}

// Package completion turns a resolved cursor position into completion
// candidates.
package completion

import (
	"bytes"
	"regexp"
	"slices"
	"strings"

	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

var log = commonlog.GetLogger("cloudify-ls.completion")

// Kind classifies a candidate. The server maps it to the editor's item kinds.
type Kind int

const (
	KindKeyword Kind = iota
	KindValue
	KindModule
	KindClass
	KindProperty
	KindFunction
	KindVariable
	KindFile
	KindSnippet
)

// Candidate is one completion item.
type Candidate struct {
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
	// Detail is a short annotation shown next to the label.
	Detail string `json:"detail,omitempty"`
	// InsertText replaces Label in the document when set.
	InsertText    string `json:"insert_text,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// Text is what gets inserted.
func (c Candidate) Text() string {
	if c.InsertText != "" {
		return c.InsertText
	}
	return c.Label
}

// Types is the read side of the node type cache.
type Types interface {
	Lookup(nodeType string) (cache.NodeType, bool)
	NamesFor(plugins ...string) []string
}

// Sources are the collaborators consulted besides the resolved position.
// Every field may be empty.
type Sources struct {
	Types Types
	// Importables are local yaml files offered as imports.
	Importables []string
	// ExtraPlugins are offered for import next to the well known ones.
	ExtraPlugins []string
	// FallbackInputs are offered as get_input arguments when the document
	// declares no inputs.
	FallbackInputs []string
}

// DescriptionPlaceholder is offered as the value of description.
const DescriptionPlaceholder = "This blueprint does xyz..."

// PropertyPlaceholder marks the property name still to be filled in a
// get_property or get_attribute argument.
const PropertyPlaceholder = "INSERT_PROPERTY_NAME"

var toscaValueLine = regexp.MustCompile(`^` + registry.ToscaDefinitionsVersion + `:\s`)

var booleans = []string{"true", "false"}

type strategy struct {
	name string
	fn   func(res blueprint.Result, src Sources) ([]Candidate, bool)
}

// strategies run in order; the first one that applies decides the list.
var strategies = []strategy{
	{"unparsed", unparsed},
	{"new top-level entry", newTopLevel},
	{"dsl version", dslVersion},
	{"description", description},
	{"intrinsic function", intrinsic},
	{"imports", imports},
	{"inputs", inputs},
	{"node templates", nodeTemplates},
	{"top level", topLevelFallback},
}

// Build returns the candidates for res. It never fails; a position no
// strategy understands yields nil.
func Build(res blueprint.Result, src Sources) []Candidate {
	for _, s := range strategies {
		out, ok := s.fn(res, src)
		if !ok {
			continue
		}
		log.Debugf("%s: %d candidates", s.name, len(out))
		return dedupe(out)
	}
	return nil
}

func dedupe(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		if seen[c.Label] {
			continue
		}
		seen[c.Label] = true
		out = append(out, c)
	}
	return out
}

func unparsed(res blueprint.Result, _ Sources) ([]Candidate, bool) {
	if res.Parsed {
		return nil, false
	}
	return topLevel(registry.TopLevelNames, res.Cursor.FileIndentation), true
}

func newTopLevel(res blueprint.Result, _ Sources) ([]Candidate, bool) {
	if !res.Classifiers.NewTopLevel {
		return nil, false
	}
	return topLevel(missing(registry.TopLevelNames, res.TopLevel), res.Cursor.FileIndentation), true
}

func topLevelFallback(res blueprint.Result, _ Sources) ([]Candidate, bool) {
	if res.Cursor.Indentation != 0 || strings.Contains(res.Cursor.Text, ":") {
		return nil, false
	}
	return topLevel(missing(registry.TopLevelNames, res.TopLevel), res.Cursor.FileIndentation), true
}

func topLevel(names []string, indent int) []Candidate {
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		out = append(out, Candidate{
			Label:      n,
			Kind:       KindModule,
			Detail:     "section",
			InsertText: registry.FormatTopLevel(n, indent),
		})
	}
	return out
}

func dslVersion(res blueprint.Result, _ Sources) ([]Candidate, bool) {
	if !toscaValueLine.MatchString(res.Cursor.Text) {
		return nil, false
	}
	return values(registry.DSLVersions, KindValue, "DSL version"), true
}

func description(res blueprint.Result, _ Sources) ([]Candidate, bool) {
	if res.Section != registry.Description {
		return nil, false
	}
	return []Candidate{{Label: DescriptionPlaceholder, Kind: KindValue}}, true
}

func intrinsic(res blueprint.Result, src Sources) ([]Candidate, bool) {
	c := res.Classifiers
	if !c.Intrinsic {
		return nil, false
	}
	var out []Candidate
	if c.GetInput {
		names := res.Inputs
		if len(names) == 0 {
			names = src.FallbackInputs
		}
		out = append(out, values(names, KindVariable, "input")...)
	}
	if c.GetProperty {
		for _, t := range res.NodeTemplates {
			out = append(out, Candidate{
				Label:  "[ " + t + ", " + PropertyPlaceholder + " ]",
				Kind:   KindVariable,
				Detail: "node template",
			})
		}
	}
	return append(out, values(registry.IntrinsicFunctions, KindFunction, "intrinsic function")...), true
}

func imports(res blueprint.Result, src Sources) ([]Candidate, bool) {
	if res.Section != registry.Imports {
		return nil, false
	}
	raw := res.Raw(registry.Imports)
	c := res.Classifiers
	switch {
	case c.PluginImport:
		var out []Candidate
		for _, p := range slices.Concat(registry.Plugins, src.ExtraPlugins) {
			if strings.Contains(raw, p) {
				continue
			}
			out = append(out, Candidate{Label: p, Kind: KindModule, Detail: "plugin"})
		}
		return out, true
	case c.ImportItem:
		var out []Candidate
		for _, kw := range registry.ImportKeywords {
			if kw != "plugin:" && strings.Contains(raw, kw) {
				continue
			}
			out = append(out, Candidate{Label: kw, Kind: KindKeyword})
		}
		for _, f := range src.Importables {
			if strings.Contains(raw, f) {
				continue
			}
			out = append(out, Candidate{Label: f, Kind: KindFile, Detail: "local import"})
		}
		return out, true
	}
	return nil, false
}

func inputs(res blueprint.Result, _ Sources) ([]Candidate, bool) {
	in := res.Classifiers.Input
	if in == nil {
		return nil, false
	}
	switch in.Field {
	case "":
		var out []Candidate
		for _, f := range missing(registry.InputFields, in.Present) {
			out = append(out, Candidate{Label: f, Kind: KindProperty, InsertText: f + ": "})
		}
		return out, true
	case "type":
		return values(registry.InputTypes, KindValue, "input type"), true
	case "required":
		return values(booleans, KindValue, ""), true
	case "display_label":
		return []Candidate{
			{Label: Label(in.Input), Kind: KindValue},
			{Label: in.Input, Kind: KindValue},
		}, true
	case "default":
		// only a boolean has a closed set of values to offer
		if in.Type != "boolean" {
			return nil, true
		}
		return values(booleans, KindValue, in.Type), true
	}
	return nil, false
}

// Label turns an input name like vm_image_id into "Vm Image Id".
func Label(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func nodeTemplates(res blueprint.Result, src Sources) ([]Candidate, bool) {
	nt := res.Classifiers.NodeTemplate
	if nt == nil {
		return nil, false
	}
	switch nt.Position {
	case blueprint.TemplateType:
		out := values(registry.BuiltinNodeTypes, KindClass, "built-in")
		if src.Types != nil && len(res.Plugins) > 0 {
			plugins := make([]string, 0, len(res.Plugins))
			for _, p := range res.Plugins {
				plugins = append(plugins, p.Name)
			}
			out = append(out, values(src.Types.NamesFor(plugins...), KindClass, "plugin")...)
		}
		return out, true
	case blueprint.TemplateKeyword:
		var out []Candidate
		for _, kw := range missing(registry.NodeTemplateKeywords, nt.Present) {
			out = append(out, Candidate{Label: kw, Kind: KindProperty, InsertText: kw + ":"})
		}
		return out, true
	case blueprint.TemplateProperties:
		return properties(res, nt, src), true
	}
	return nil, false
}

// properties offers a whole properties block for the template's type plus
// one item per property not written yet. A type missing from the cache
// yields nothing until its plugin has been fetched.
func properties(res blueprint.Result, nt *blueprint.NodeTemplateField, src Sources) []Candidate {
	var (
		skeleton map[string]any
		names    []string
		docs     = map[string]string{}
	)
	if !nt.Known {
		return nil
	}
	if t, ok := lookup(src.Types, nt.Type); ok {
		skeleton = t.Skeleton()
		names = t.PropertyNames()
		for n, p := range t.Properties {
			if d, ok := p["description"].(string); ok {
				docs[n] = d
			}
		}
	}
	if example, ok := registry.ExampleProperties[nt.Type]; ok {
		skeleton = example
		if names == nil {
			for n := range example {
				names = append(names, n)
			}
			slices.Sort(names)
		}
	}
	if skeleton == nil {
		return nil
	}

	var out []Candidate
	if text, err := Render(skeleton, res.Cursor.Indentation, res.Cursor.FileIndentation); err != nil {
		log.Warningf("could not render properties of %s: %s", nt.Type, err)
	} else {
		out = append(out, Candidate{
			Label:      nt.Type + " properties",
			Kind:       KindSnippet,
			Detail:     nt.Type,
			InsertText: text,
		})
	}
	for _, n := range missing(names, nt.Present) {
		out = append(out, Candidate{
			Label:         n,
			Kind:          KindProperty,
			Detail:        nt.Type,
			InsertText:    n + ": ",
			Documentation: docs[n],
		})
	}
	return out
}

func lookup(types Types, nodeType string) (cache.NodeType, bool) {
	if types == nil || nodeType == "" {
		return cache.NodeType{}, false
	}
	return types.Lookup(nodeType)
}

// Render encodes v as block YAML. Every line after the first is indented
// by indent columns so the text can be inserted at a cursor standing in
// that column.
func Render(v any, indent, step int) (string, error) {
	if step <= 0 {
		step = 2
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(step)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	pad := strings.Repeat(" ", indent)
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n"), nil
}

func values(names []string, kind Kind, detail string) []Candidate {
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		out = append(out, Candidate{Label: n, Kind: kind, Detail: detail})
	}
	return out
}

// missing returns the entries of all not in present, keeping their order.
func missing(all, present []string) []string {
	var out []string
	for _, n := range all {
		if !slices.Contains(present, n) {
			out = append(out, n)
		}
	}
	return out
}

package blueprint

import (
	"strings"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

// Import is a plugin named in the imports section.
type Import struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

const pluginPrefix = "plugin:"

// ImportedPlugins lists the plugin imports of a blueprint in document order.
// Both "- plugin:name?version=x" and "- plugin: name" spellings count.
func ImportedPlugins(root *parser.Node) []Import {
	seq := root.Get(registry.Imports)
	if seq == nil || seq.Kind != parser.KindSequence {
		return nil
	}
	var imports []Import
	seen := map[string]bool{}
	add := func(imp Import, ok bool) {
		if ok && !seen[imp.Name] {
			seen[imp.Name] = true
			imports = append(imports, imp)
		}
	}
	for _, item := range seq.Items {
		if item == nil {
			continue
		}
		switch item.Kind {
		case parser.KindScalar:
			add(ParsePluginImport(item.Text))
		case parser.KindMapping:
			if v, ok := item.Get("plugin").Scalar(); ok {
				add(ParsePluginImport(pluginPrefix + v))
			}
		}
	}
	return imports
}

// ParsePluginImport splits "plugin:<name>[?version=<constraint>]".
func ParsePluginImport(s string) (Import, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), pluginPrefix)
	if !ok {
		return Import{}, false
	}
	name, query, _ := strings.Cut(rest, "?")
	imp := Import{Name: strings.TrimSpace(name)}
	if imp.Name == "" {
		return Import{}, false
	}
	for _, param := range strings.Split(query, "&") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(param), "version="); ok {
			imp.Version = strings.TrimSpace(v)
		}
	}
	return imp, true
}

package blueprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
)

const sectionsDoc = "tosca_definitions_version: cloudify_dsl_1_4\n" +
	"imports:\n  - cloudify/types/types.yaml\n" +
	"extra: 1\n" +
	"inputs:\n  region:\n    type: string\n"

func TestSections(t *testing.T) {
	tree := parseTree(t, sectionsDoc)
	require.NotNil(t, tree.Root)

	sections := blueprint.Sections(tree.Root, len(sectionsDoc))
	require.Len(t, sections, 3)

	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"tosca_definitions_version", "imports", "inputs"}, names)

	assert.Equal(t, "tosca_definitions_version: cloudify_dsl_1_4\n", sections[0].Raw(sectionsDoc))
	// the unrecognized key ends the imports section
	assert.Equal(t, "imports:\n  - cloudify/types/types.yaml\n", sections[1].Raw(sectionsDoc))
	assert.Equal(t, "inputs:\n  region:\n    type: string\n", sections[2].Raw(sectionsDoc))

	assert.False(t, sections[1].Open)
	assert.True(t, sections[2].Open)
	assert.True(t, sections[2].Contains(len(sectionsDoc)+5))
	assert.False(t, sections[1].Contains(sections[1].End))
	assert.Equal(t, "inputs", sections[2].Pair().KeyText())
}

func TestSectionsDoNotOverlap(t *testing.T) {
	tree := parseTree(t, sectionsDoc)
	sections := blueprint.Sections(tree.Root, len(sectionsDoc))
	for i := 1; i < len(sections); i++ {
		assert.LessOrEqual(t, sections[i-1].End, sections[i].Start)
	}
}

func TestSectionAtBoundary(t *testing.T) {
	// right behind the first value still belongs to the first section
	text := "description: x\ninputs:\n  a:\n    type: string\n"
	doc := document.New(text)
	tree := parseTree(t, text)

	r := blueprint.Resolve(doc, tree, document.Position{Line: 0, Character: 14}, nil)
	assert.Equal(t, "description", r.Section)

	r = blueprint.Resolve(doc, tree, document.Position{Line: 1, Character: 3}, nil)
	assert.Equal(t, "inputs", r.Section)
}

func TestYAMLPath(t *testing.T) {
	assert.Equal(t, "", blueprint.YAMLPath(nil))
	assert.Equal(t, "inputs.", blueprint.YAMLPath([]string{"inputs"}))
	assert.Equal(t, "node_templates.vm.properties.", blueprint.YAMLPath([]string{"node_templates", "vm", "properties"}))
}

func TestContainsNullAtEnd(t *testing.T) {
	null := parser.NewNull(7)
	assert.True(t, blueprint.Contains(null, 7, 20))
	assert.False(t, blueprint.Contains(null, 9, 20))
	assert.True(t, blueprint.Contains(null, 19, 20))
	assert.False(t, blueprint.Contains(nil, 0, 0))

	seq := parser.NewSequence(parser.NewScalar("a", 2, 3), parser.NewScalar("b", 6, 7))
	assert.True(t, blueprint.Contains(seq, 6, 20))
	assert.False(t, blueprint.Contains(seq, 4, 20))
}

func TestTracker(t *testing.T) {
	tr := blueprint.NewTracker()

	assert.False(t, tr.Diff("inputs", ""), "absent section starts unchanged")
	assert.True(t, tr.Diff("imports", "imports:\n  - a"))
	assert.False(t, tr.Diff("imports", "imports:\n  - a"))
	assert.True(t, tr.Diff("imports", "imports:\n  - b"))
	assert.True(t, tr.Diff("imports", ""), "removal is a change")

	tr.Reset()
	assert.True(t, tr.Diff("imports", "imports:\n  - b"))
}

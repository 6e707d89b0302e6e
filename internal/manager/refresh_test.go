package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
)

func resolveText(t *testing.T, text string) blueprint.Result {
	t.Helper()
	p := parser.NewParser()
	defer p.Close()
	tree, err := p.Parse(context.Background(), []byte(text))
	require.NoError(t, err)
	doc := document.New(text)
	return blueprint.Resolve(doc, tree, document.Position{}, nil)
}

func TestRefreshOnlyChangedSections(t *testing.T) {
	c := &docContext{tracker: blueprint.NewTracker()}

	full := "inputs:\n  region:\n    type: string\nnode_templates:\n  vm:\n    type: cloudify.nodes.Compute\n"
	assert.Equal(t, []string{"inputs", "node_templates"}, c.refresh(resolveText(t, full), false))
	assert.Equal(t, []string{"region"}, c.last.Inputs)
	assert.Equal(t, []string{"vm"}, c.last.NodeTemplates)

	// a parse with errors that lost node_templates keeps the last templates
	partial := "inputs:\n  region:\n    type: string\n  zone:\n    type: string\n"
	assert.Equal(t, []string{"inputs"}, c.refresh(resolveText(t, partial), true))
	assert.Equal(t, []string{"region", "zone"}, c.last.Inputs)
	assert.Equal(t, []string{"vm"}, c.last.NodeTemplates)

	// a clean parse without the section does clear it
	assert.Equal(t, []string{"node_templates"}, c.refresh(resolveText(t, partial), false))
	assert.Empty(t, c.last.NodeTemplates)
	assert.Equal(t, []string{"region", "zone"}, c.last.Inputs)
}

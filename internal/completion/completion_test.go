package completion_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/completion"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
)

func resolveAtEnd(t *testing.T, text string) blueprint.Result {
	t.Helper()
	p := parser.NewParser()
	defer p.Close()
	tree, err := p.Parse(context.Background(), []byte(text))
	require.NoError(t, err)
	doc := document.New(text)
	return blueprint.Resolve(doc, tree, doc.PositionForOffset(doc.Len()), nil)
}

func labels(cs []completion.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Label)
	}
	return out
}

func TestBuildUnparsed(t *testing.T) {
	got := completion.Build(blueprint.Result{}, completion.Sources{})
	assert.Equal(t, registry.TopLevelNames, labels(got))
	assert.Equal(t, "tosca_definitions_version: ", got[0].Text())
	assert.Equal(t, "imports:\n  - ", got[2].Text())
	assert.Equal(t, "inputs:\n\n  ", got[3].Text())
}

func TestBuildNewTopLevel(t *testing.T) {
	res := blueprint.Result{
		Parsed:      true,
		TopLevel:    []string{"tosca_definitions_version", "imports"},
		Cursor:      document.Cursor{FileIndentation: 4},
		Classifiers: blueprint.Classifiers{NewTopLevel: true},
	}
	got := completion.Build(res, completion.Sources{})
	assert.NotContains(t, labels(got), "imports")
	assert.Equal(t, "description", got[0].Label)
	assert.Equal(t, "inputs:\n\n    ", got[1].Text())
	assert.Len(t, got, len(registry.TopLevelNames)-2)
}

func TestBuildDSLVersion(t *testing.T) {
	res := blueprint.Result{Parsed: true, Cursor: document.Cursor{Text: "tosca_definitions_version: "}}
	assert.Equal(t, registry.DSLVersions, labels(completion.Build(res, completion.Sources{})))
}

func TestBuildDescription(t *testing.T) {
	res := blueprint.Result{Parsed: true, Section: "description", Cursor: document.Cursor{Text: "description: "}}
	assert.Equal(t, []string{completion.DescriptionPlaceholder}, labels(completion.Build(res, completion.Sources{})))
}

func TestBuildPluginImport(t *testing.T) {
	res := resolveAtEnd(t, "tosca_definitions_version: cloudify_dsl_1_4\nimports:\n  - plugin:")
	got := labels(completion.Build(res, completion.Sources{ExtraPlugins: []string{"cloudify-custom-plugin"}}))
	assert.Contains(t, got, "cloudify-aws-plugin")
	assert.Contains(t, got, "cloudify-custom-plugin")
	assert.Len(t, got, len(registry.Plugins)+1)
}

func TestBuildImportItem(t *testing.T) {
	res := resolveAtEnd(t, "imports:\n  - cloudify/types/types.yaml\n  - plugin:cloudify-aws-plugin\n  - ")
	require.True(t, res.Classifiers.ImportItem)
	require.False(t, res.Classifiers.PluginImport)

	got := labels(completion.Build(res, completion.Sources{
		Importables: []string{"imports/network.yaml", "imports/vm.yaml"},
	}))
	assert.NotContains(t, got, "cloudify/types/types.yaml")
	assert.Contains(t, got, "plugin:", "plugin: is offered even when already used")
	assert.Contains(t, got, "imports/vm.yaml")
}

func TestBuildIntrinsic(t *testing.T) {
	t.Run("get_input", func(t *testing.T) {
		res := blueprint.Result{
			Parsed:      true,
			Inputs:      []string{"region", "image"},
			Classifiers: blueprint.Classifiers{Intrinsic: true, Function: "get_input", GetInput: true},
		}
		got := labels(completion.Build(res, completion.Sources{}))
		assert.Equal(t, []string{"region", "image"}, got[:2])
		assert.Contains(t, got, "get_input")
	})
	t.Run("get_input without inputs", func(t *testing.T) {
		res := blueprint.Result{
			Parsed:      true,
			Classifiers: blueprint.Classifiers{Intrinsic: true, GetInput: true},
		}
		got := labels(completion.Build(res, completion.Sources{FallbackInputs: []string{"fallback"}}))
		assert.Equal(t, "fallback", got[0])
	})
	t.Run("get_property", func(t *testing.T) {
		res := blueprint.Result{
			Parsed:        true,
			NodeTemplates: []string{"vm", "network"},
			Classifiers:   blueprint.Classifiers{Intrinsic: true, GetProperty: true},
		}
		got := labels(completion.Build(res, completion.Sources{}))
		assert.Equal(t, []string{"[ vm, INSERT_PROPERTY_NAME ]", "[ network, INSERT_PROPERTY_NAME ]"}, got[:2])
	})
	t.Run("bare braces", func(t *testing.T) {
		res := blueprint.Result{Parsed: true, Classifiers: blueprint.Classifiers{Intrinsic: true}}
		assert.Equal(t, registry.IntrinsicFunctions, labels(completion.Build(res, completion.Sources{})))
	})
}

func TestBuildIntrinsicInNodeTemplate(t *testing.T) {
	t.Run("get_input", func(t *testing.T) {
		res := resolveAtEnd(t, "inputs:\n  region:\n    type: string\n  zone:\n    type: string\n"+
			"node_templates:\n  vm:\n    properties:\n      p: { get_input: ")
		require.Equal(t, "node_templates", res.Section)
		got := labels(completion.Build(res, completion.Sources{}))
		assert.Equal(t, []string{"region", "zone"}, got[:2])
	})
	t.Run("get_property", func(t *testing.T) {
		res := resolveAtEnd(t, "node_templates:\n  vm:\n    type: x\n  net:\n    type: y\n    properties:\n      p: { get_property: ")
		require.Equal(t, "node_templates", res.Section)
		require.GreaterOrEqual(t, len(res.Path), 3)
		assert.Equal(t, []string{"node_templates", "net", "properties"}, res.Path[:3])
		got := labels(completion.Build(res, completion.Sources{}))
		assert.Equal(t, []string{"[ vm, INSERT_PROPERTY_NAME ]", "[ net, INSERT_PROPERTY_NAME ]"}, got[:2])
		assert.Contains(t, got, "get_property")
	})
}

func TestBuildInputs(t *testing.T) {
	build := func(in blueprint.InputField) []completion.Candidate {
		return completion.Build(blueprint.Result{
			Parsed:      true,
			Section:     "inputs",
			Cursor:      document.Cursor{Text: "    x", Indentation: 4},
			Classifiers: blueprint.Classifiers{Input: &in},
		}, completion.Sources{})
	}

	fields := build(blueprint.InputField{Input: "region", Present: []string{"type"}})
	assert.Equal(t, []string{"description", "display_label", "required", "default"}, labels(fields))
	assert.Equal(t, "description: ", fields[0].Text())

	assert.Equal(t, registry.InputTypes, labels(build(blueprint.InputField{Input: "region", Field: "type"})))
	assert.Equal(t, []string{"true", "false"}, labels(build(blueprint.InputField{Input: "region", Field: "required"})))
	assert.Equal(t, []string{"Vm Image Id", "vm_image_id"}, labels(build(blueprint.InputField{Input: "vm_image_id", Field: "display_label"})))
	assert.Equal(t, []string{"true", "false"}, labels(build(blueprint.InputField{Input: "enabled", Field: "default", Type: "boolean"})))
	assert.Empty(t, build(blueprint.InputField{Input: "count", Field: "default", Type: "integer"}))
	assert.Empty(t, build(blueprint.InputField{Input: "name", Field: "default", Type: "string"}))
	assert.Empty(t, build(blueprint.InputField{Input: "name", Field: "default"}))
}

func awsCache(t *testing.T) *cache.Cache {
	t.Helper()
	c := cache.New(nil, 0)
	require.NoError(t, c.Add(cache.Plugin{Name: "cloudify-aws-plugin", Version: "3.0.0"}, []cache.NodeType{
		{
			Type: "cloudify.nodes.aws.ec2.Instances",
			Properties: map[string]cache.Property{
				"use_external_resource": {"type": "boolean", "default": false, "description": "Use an existing instance."},
				"resource_config":       {"type": "dict", "ImageId": ""},
			},
		},
		{Type: "cloudify.nodes.aws.ec2.Vpc"},
	}))
	return c
}

func TestBuildNodeTemplateType(t *testing.T) {
	res := blueprint.Result{
		Parsed:      true,
		Plugins:     []blueprint.Import{{Name: "cloudify-aws-plugin"}},
		Classifiers: blueprint.Classifiers{NodeTemplate: &blueprint.NodeTemplateField{Template: "vm", Position: blueprint.TemplateType}},
	}
	got := labels(completion.Build(res, completion.Sources{Types: awsCache(t)}))
	assert.Contains(t, got, "cloudify.nodes.Compute")
	assert.Contains(t, got, "cloudify.nodes.aws.ec2.Instances")

	res.Plugins = nil
	assert.NotContains(t, labels(completion.Build(res, completion.Sources{Types: awsCache(t)})), "cloudify.nodes.aws.ec2.Vpc")
}

func TestBuildNodeTemplateKeyword(t *testing.T) {
	res := blueprint.Result{
		Parsed: true,
		Classifiers: blueprint.Classifiers{NodeTemplate: &blueprint.NodeTemplateField{
			Template: "vm",
			Position: blueprint.TemplateKeyword,
			Present:  []string{"type"},
		}},
	}
	got := completion.Build(res, completion.Sources{})
	assert.Equal(t, []string{"properties", "relationships", "interfaces"}, labels(got))
	assert.Equal(t, "properties:", got[0].Text())
}

func TestBuildNodeTemplateProperties(t *testing.T) {
	res := blueprint.Result{
		Parsed: true,
		Cursor: document.Cursor{Indentation: 6, FileIndentation: 2},
		Classifiers: blueprint.Classifiers{NodeTemplate: &blueprint.NodeTemplateField{
			Template: "vm",
			Position: blueprint.TemplateProperties,
			Type:     "cloudify.nodes.aws.ec2.Instances",
			Known:    true,
			Present:  []string{"resource_config"},
		}},
	}
	got := completion.Build(res, completion.Sources{Types: awsCache(t)})
	require.Len(t, got, 2)
	assert.Equal(t, completion.KindSnippet, got[0].Kind)
	assert.Equal(t, "resource_config:\n        ImageId: \"\"\n      use_external_resource: false", got[0].Text())
	assert.Equal(t, "use_external_resource", got[1].Label)
	assert.Equal(t, "Use an existing instance.", got[1].Documentation)
}

func TestBuildNodeTemplatePropertiesExample(t *testing.T) {
	res := blueprint.Result{
		Parsed: true,
		Classifiers: blueprint.Classifiers{NodeTemplate: &blueprint.NodeTemplateField{
			Position: blueprint.TemplateProperties,
			Type:     "cloudify.nodes.aws.ec2.Vpc",
			Known:    true,
		}},
	}
	got := completion.Build(res, completion.Sources{Types: awsCache(t)})
	require.NotEmpty(t, got)
	assert.Contains(t, got[0].Text(), "CidrBlock: 10.10.0.0/16")
}

func TestBuildNodeTemplatePropertiesExampleNotImported(t *testing.T) {
	res := blueprint.Result{
		Parsed: true,
		Classifiers: blueprint.Classifiers{NodeTemplate: &blueprint.NodeTemplateField{
			Position: blueprint.TemplateProperties,
			Type:     "cloudify.nodes.aws.ec2.Vpc",
		}},
	}
	assert.Empty(t, completion.Build(res, completion.Sources{}), "no example before the plugin is imported")
}

func TestBuildNodeTemplatePropertiesUnknownType(t *testing.T) {
	res := blueprint.Result{
		Parsed: true,
		Classifiers: blueprint.Classifiers{NodeTemplate: &blueprint.NodeTemplateField{
			Position: blueprint.TemplateProperties,
			Type:     "cloudify.nodes.aws.ec2.NotFetchedYet",
		}},
	}
	assert.Empty(t, completion.Build(res, completion.Sources{Types: awsCache(t)}))
}

func TestBuildTopLevelFallback(t *testing.T) {
	res := blueprint.Result{
		Parsed:   true,
		TopLevel: registry.TopLevelNames[1:],
		Cursor:   document.Cursor{Text: "tos"},
	}
	assert.Equal(t, []string{"tosca_definitions_version"}, labels(completion.Build(res, completion.Sources{})))

	res.Cursor = document.Cursor{Text: "  indented", Indentation: 2}
	assert.Empty(t, completion.Build(res, completion.Sources{}))
}

func TestRender(t *testing.T) {
	text, err := completion.Render(map[string]any{"a": map[string]any{"b": 1}}, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "a:\n      b: 1", text)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Region", completion.Label("region"))
	assert.Equal(t, "Vm Image Id", completion.Label("vm_image_id"))
}

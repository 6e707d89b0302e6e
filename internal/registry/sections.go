// Package registry holds the static Cloudify DSL vocabulary: section names,
// keywords, built-in node types, plugins and intrinsic functions.
package registry

import (
	"slices"
	"strings"
)

const (
	ToscaDefinitionsVersion = "tosca_definitions_version"
	Description             = "description"
	Imports                 = "imports"
	Inputs                  = "inputs"
	DSLDefinitions          = "dsl_definitions"
	Labels                  = "labels"
	BlueprintLabels         = "blueprint_labels"
	NodeTypes               = "node_types"
	Relationships           = "relationships"
	Workflows               = "workflows"
	NodeTemplates           = "node_templates"
	Outputs                 = "outputs"
	Capabilities            = "capabilities"
)

// TopLevelNames is the ordered list of recognized top-level sections.
var TopLevelNames = []string{
	ToscaDefinitionsVersion,
	Description,
	Imports,
	Inputs,
	DSLDefinitions,
	Labels,
	BlueprintLabels,
	NodeTypes,
	Relationships,
	Workflows,
	NodeTemplates,
	Outputs,
	Capabilities,
}

// scalarSections take a value on the same line instead of a nested block.
var scalarSections = []string{ToscaDefinitionsVersion, Description}

// IsTopLevel reports whether name is a recognized top-level section.
func IsTopLevel(name string) bool {
	return slices.Contains(TopLevelNames, name)
}

// FormatTopLevel renders a section name the way it is inserted into a
// blueprint: scalar sections continue on the same line, imports open a list
// and all others open an indented block after a blank line. indent is the
// file's indentation unit, 2 when unknown.
func FormatTopLevel(name string, indent int) string {
	if slices.Contains(scalarSections, name) {
		return name + ": "
	}
	if indent <= 0 {
		indent = 2
	}
	pad := strings.Repeat(" ", indent)
	if name == Imports {
		return name + ":\n" + pad + "- "
	}
	return name + ":\n\n" + pad
}

const docsBase = "https://docs.cloudify.co/latest/developer/blueprints/"

var sectionDocs = map[string]string{
	ToscaDefinitionsVersion: "A top-level property of a blueprint, which is used to specify the DSL version.\n" +
		"Currently, supported versions are:\n  - cloudify_dsl_1_3\n  - cloudify_dsl_1_4\n  - cloudify_dsl_1_5\n\n" +
		"For more information, see " + docsBase + "spec-versioning/",
	Description: "Provide a description of a blueprint.",
	Imports: "Import other blueprints, type definitions and plugins into this blueprint.\n\n" +
		"For more information, see " + docsBase + "spec-imports/",
	Inputs: "Parameters that are injected into a blueprint when a deployment is created. " +
		"These parameters can be referenced elsewhere in the blueprint with the get_input intrinsic function.\n\n" +
		"For more information, see " + docsBase + "spec-inputs/",
	DSLDefinitions: "A section reserved for defining arbitrary data structures that can then be reused " +
		"in different parts of the blueprint using YAML anchors and aliases.\n\n" +
		"For more information, see: " + docsBase + "spec-dsl-definitions/",
	Labels: "Tag deployments. Label's keys are saved in lowercase.\n\n" +
		"For more information, see: " + docsBase + "spec-labels/",
	BlueprintLabels: "Automatically attach labels to a blueprint.\nThe label's keys should be lowercase.\n\n" +
		"For more information, see: " + docsBase + "spec-blueprint-labels/",
	NodeTypes: "Define node types to be used as the type of node templates.\n\n" +
		"For more information, see " + docsBase + "spec-node-types/",
	Relationships: "Create dependencies between node templates.\nDefine operations to be called before and after node resolution.\n\n" +
		"For more information, see " + docsBase + "spec-relationships/",
	Workflows: docsBase + "spec-workflows/",
	NodeTemplates: "Declare the instances of node types that make up a deployment.\n\n" +
		"For more information, see " + docsBase + "spec-node-templates/",
	Outputs:      docsBase + "spec-outputs/",
	Capabilities: docsBase + "spec-capabilities/",

	"deployment_settings": docsBase + "spec-deployment-settings/",
	"plugins":             docsBase + "spec-plugins/",
	"interfaces":          docsBase + "spec-interfaces/",
	"groups":              docsBase + "spec-groups/",
	"policies":            docsBase + "spec-policies/",
	"policy_types":        docsBase + "spec-policy-types/",
	"policy_triggers":     docsBase + "spec-policy-triggers/",
	"data_types":          docsBase + "spec-data-types/",
	"upload_resources":    docsBase + "spec-upload-resources/",
}

// Documentation returns documentation for a section name, intrinsic function
// or node type, and whether any is known.
func Documentation(word string) (string, bool) {
	if doc, ok := sectionDocs[word]; ok {
		return doc, true
	}
	if doc, ok := intrinsicDocs[word]; ok {
		return doc, true
	}
	if slices.Contains(BuiltinNodeTypes, word) {
		return "Built-in Cloudify node type.\n\nFor more information, see " + docsBase + "built-in-types/", true
	}
	return "", false
}

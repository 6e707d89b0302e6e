package registry

import "regexp"

// DSLVersions are the accepted values of tosca_definitions_version.
var DSLVersions = []string{"cloudify_dsl_1_3", "cloudify_dsl_1_4", "cloudify_dsl_1_5"}

// ImportKeywords are offered as list items of the imports section.
var ImportKeywords = []string{
	"cloudify/types/types.yaml",
	"https://cloudify.co/spec/cloudify/6.3.0/types.yaml",
	"https://cloudify.co/spec/cloudify/6.4.0/types.yaml",
	"plugin:",
}

// InputFields are the fields an input declaration may carry.
var InputFields = []string{"type", "description", "display_label", "required", "default"}

// InputValueFields are the input fields whose values get suggestions.
var InputValueFields = []string{"type", "required", "display_label", "default"}

// InputTypes are the accepted values of an input's type field.
var InputTypes = []string{"string", "integer", "boolean", "dict", "list"}

// NodeTemplateKeywords are the fields a node template may carry.
var NodeTemplateKeywords = []string{"type", "properties", "relationships", "interfaces"}

// PluginPattern matches the names of importable plugins.
var PluginPattern = regexp.MustCompile(`^cloudify-[a-z-]*-plugin$`)

// IsPluginName reports whether name looks like an importable plugin.
func IsPluginName(name string) bool {
	return PluginPattern.MatchString(name)
}

// Plugins is the list of well known plugins offered for import.
var Plugins = []string{
	"cloudify-ansible-plugin",
	"cloudify-aws-plugin",
	"cloudify-azure-plugin",
	"cloudify-docker-plugin",
	"cloudify-fabric-plugin",
	"cloudify-gcp-plugin",
	"cloudify-helm-plugin",
	"cloudify-kubernetes-plugin",
	"cloudify-openstack-plugin",
	"cloudify-serverless-plugin",
	"cloudify-spot-ocean-plugin",
	"cloudify-starlingx-plugin",
	"cloudify-terraform-plugin",
	"cloudify-terragrunt-plugin",
	"cloudify-utilities-plugin",
	"cloudify-vsphere-plugin",
}

// NodeTypePrefix is the namespace of node types contributed by plugins.
const NodeTypePrefix = "cloudify.nodes."

// BuiltinNodeTypes ship with every Cloudify manager.
var BuiltinNodeTypes = []string{
	"cloudify.nodes.Port",
	"cloudify.nodes.Root",
	"cloudify.nodes.Tier",
	"cloudify.nodes.Router",
	"cloudify.nodes.Subnet",
	"cloudify.nodes.Volume",
	"cloudify.nodes.Network",
	"cloudify.nodes.Compute",
	"cloudify.nodes.Container",
	"cloudify.nodes.VirtualIP",
	"cloudify.nodes.FileSystem",
	"cloudify.nodes.ObjectStorage",
	"cloudify.nodes.LoadBalancer",
	"cloudify.nodes.SecurityGroup",
	"cloudify.nodes.SoftwareComponent",
	"cloudify.nodes.DBMS",
	"cloudify.nodes.Database",
	"cloudify.nodes.WebServer",
	"cloudify.nodes.ApplicationServer",
	"cloudify.nodes.MessageBusServer",
	"cloudify.nodes.ApplicationModule",
	"cloudify.nodes.CloudifyManager",
	"cloudify.nodes.Component",
	"cloudify.nodes.ServiceComponent",
	"cloudify.nodes.SharedResource",
	"cloudify.nodes.Blueprint",
	"cloudify.nodes.PasswordSecret",
}

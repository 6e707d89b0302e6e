package registry

import "strings"

// IntrinsicFunctions are offered inside { } expressions, in this order.
var IntrinsicFunctions = []string{
	"get_input",
	"concat",
	"get_property",
	"get_attribute",
	"get_capability",
	"get_environment_capability",
}

// IntrinsicFunctionNames lists every function the DSL evaluates, including
// the ones not offered as completions.
var IntrinsicFunctionNames = []string{
	"get_secret",
	"get_input",
	"get_property",
	"get_attribute",
	"get_attributes_list",
	"get_attributes_dict",
	"get_capability",
	"get_environment_capability",
	"get_label",
	"get_sys",
	"string_find",
	"string_replace",
	"string_split",
	"string_lower",
	"string_upper",
	"concat",
	"merge",
}

// IntrinsicNamePattern is an alternation of IntrinsicFunctionNames for use
// in regular expressions.
var IntrinsicNamePattern = strings.Join(IntrinsicFunctionNames, "|")

const intrinsicDocsBase = docsBase + "spec-intrinsic-functions/#"

var intrinsicDocs = map[string]string{
	"get_secret":                 intrinsicDocsBase + "get-secret",
	"get_input":                  intrinsicDocsBase + "get-input",
	"get_property":               intrinsicDocsBase + "get-property",
	"get_attribute":              intrinsicDocsBase + "get-attribute",
	"get_attributes_list":        intrinsicDocsBase + "get-attributes-list",
	"get_attributes_dict":        intrinsicDocsBase + "get-attributes-dict",
	"get_capability":             intrinsicDocsBase + "get-capability",
	"get_environment_capability": intrinsicDocsBase + "get-environment-capability",
	"get_label":                  intrinsicDocsBase + "get-label",
	"get_sys":                    intrinsicDocsBase + "get-sys",
	"string_find":                intrinsicDocsBase + "string-find",
	"string_replace":             intrinsicDocsBase + "string-replace",
	"string_split":               intrinsicDocsBase + "string-split",
	"string_lower":               intrinsicDocsBase + "string-lower",
	"string_upper":               intrinsicDocsBase + "string-upper",
	"concat":                     intrinsicDocsBase + "concat",
	"merge":                      intrinsicDocsBase + "merge",
}

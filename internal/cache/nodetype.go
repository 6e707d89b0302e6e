// Package cache keeps the node types of imported plugins: an in-memory index
// consulted on every completion request, backed by an optional SQLite file so
// that restarting the server does not mean asking the marketplace again.
package cache

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrNotFound is returned when a plugin has no stored node types.
	ErrNotFound = errors.New("cache: record not found")

	// ErrStoreClosed is returned when the store is used after Close.
	ErrStoreClosed = errors.New("cache: store is closed")
)

// Property is the raw attribute map of one node type property as published
// by the marketplace, for example {"type": "string", "default": "x"}.
type Property map[string]any

var describingAttributes = []string{"type", "default", "required", "description"}

// Default returns the property's default value.
func (p Property) Default() (any, bool) {
	v, ok := p["default"]
	return v, ok && v != nil
}

// Remaining returns the attributes other than type, default, required and
// description.
func (p Property) Remaining() map[string]any {
	out := map[string]any{}
	for k, v := range p {
		if !slices.Contains(describingAttributes, k) {
			out[k] = v
		}
	}
	return out
}

// NodeType is one node type of a plugin version.
type NodeType struct {
	Type        string              `json:"type"`
	Plugin      string              `json:"plugin_name"`
	Version     string              `json:"plugin_version"`
	Description string              `json:"description,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
}

// Skeleton is the value of a properties block for a template of this type:
// each property set to its default, or to its remaining attributes when it
// has none.
func (t NodeType) Skeleton() map[string]any {
	out := make(map[string]any, len(t.Properties))
	for name, p := range t.Properties {
		if v, ok := p.Default(); ok {
			out[name] = v
			continue
		}
		out[name] = p.Remaining()
	}
	return out
}

// PropertyNames lists the property names in sorted order.
func (t NodeType) PropertyNames() []string {
	return slices.Sorted(maps.Keys(t.Properties))
}

// internal/config/schema.go
//
// Schema loading and compilation.
//
// Context
// -------
// The shipped JSON Schema (conf/config.schema.json) is the single source of
// truth for the configuration's valid shape.  It is consumed twice:
//
//   - as a raw SchemaNode tree, which drives the unknown-property pruner and
//     default injection (both need properties/items/additionalProperties and
//     per-property defaults, which a compiled validator hides), and
//   - compiled through santhosh-tekuri/jsonschema, which produces the error
//     list the startup validator reports.
//
// Draft-07 is used because it accepts union types ("type": ["integer",
// "string"]) without strict-mode complaints.
//
// The schema is a release artifact, not user data: it is always read with
// os.ReadFile, never through the document read hook, so test fixtures that
// substitute configuration bytes still validate against the real schema.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaNode is the raw shape of one schema subtree, limited to the
// keywords the pruner and migrator care about.
type SchemaNode struct {
	Types      []string
	Properties map[string]*SchemaNode
	Items      *SchemaNode
	Enum       []any
	Default    any

	// AdditionalProps is nil when the schema says nothing, which the
	// pruner must treat as permissive.
	AdditionalProps *bool
}

// HasType reports whether the node declares the given type, directly or as
// a member of a union.
func (n *SchemaNode) HasType(t string) bool {
	for _, x := range n.Types {
		if x == t {
			return true
		}
	}
	return false
}

// Property returns the declared sub-node for a key, or nil.
func (n *SchemaNode) Property(key string) *SchemaNode {
	if n == nil || n.Properties == nil {
		return nil
	}
	return n.Properties[key]
}

// Schema pairs the raw node tree with its compiled validator.
type Schema struct {
	Root     *SchemaNode
	compiled *jsonschema.Schema
}

// SchemaError is one normalized validation failure.
type SchemaError struct {
	Path    string // dotted instance path, "(root)" for the document itself
	Message string
}

func (e SchemaError) String() string { return e.Path + ": " + e.Message }

// LoadSchema reads, parses, and compiles the schema file.
func LoadSchema(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}

	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource("config.schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("config.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", path, err)
	}

	return &Schema{Root: parseSchemaNode(tree), compiled: compiled}, nil
}

// Validate checks a document tree against the compiled schema and returns
// the normalized error list; nil means valid.  The tree is round-tripped
// through encoding/json first so repair rules may have written native Go
// ints without confusing the validator.
func (s *Schema) Validate(root map[string]any) []SchemaError {
	data, err := json.Marshal(root)
	if err != nil {
		return []SchemaError{{Path: "(root)", Message: err.Error()}}
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return []SchemaError{{Path: "(root)", Message: err.Error()}}
	}

	err = s.compiled.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []SchemaError{{Path: "(root)", Message: err.Error()}}
	}

	var out []SchemaError
	flattenCauses(ve, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// flattenCauses collects leaf validation errors, which carry the concrete
// messages; interior nodes only say "doesn't validate".
func flattenCauses(ve *jsonschema.ValidationError, out *[]SchemaError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, SchemaError{
			Path:    instancePath(ve.InstanceLocation),
			Message: ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		flattenCauses(c, out)
	}
}

// instancePath turns a JSON-pointer instance location into the dotted form
// used everywhere else in this package.
func instancePath(loc string) string {
	loc = strings.TrimPrefix(loc, "/")
	if loc == "" {
		return "(root)"
	}
	return strings.ReplaceAll(loc, "/", ".")
}

// ApplyDefaults fills absent properties that declare a default, walking
// nested objects and object array elements.  Returns how many defaults
// were injected.  Defaults are an in-memory courtesy for readers; they are
// not treated as migrations and never trigger a disk write on their own.
func (s *Schema) ApplyDefaults(root map[string]any) int {
	if s == nil || s.Root == nil {
		return 0
	}
	return applyNodeDefaults(root, s.Root)
}

func applyNodeDefaults(obj map[string]any, node *SchemaNode) int {
	n := 0
	for key, sub := range node.Properties {
		if sub == nil {
			continue
		}
		cur, exists := obj[key]
		if !exists {
			if sub.Default != nil {
				val := cloneValue(sub.Default)
				obj[key] = val
				n++
				if m, ok := val.(map[string]any); ok {
					n += applyNodeDefaults(m, sub)
				}
			}
			continue
		}
		switch v := cur.(type) {
		case map[string]any:
			if sub.HasType("object") || len(sub.Properties) > 0 {
				n += applyNodeDefaults(v, sub)
			}
		case []any:
			if sub.Items != nil {
				for _, el := range v {
					if m, ok := el.(map[string]any); ok {
						n += applyNodeDefaults(m, sub.Items)
					}
				}
			}
		}
	}
	return n
}

// cloneValue deep-copies a default so two documents never share backing
// maps or slices.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// parseSchemaNode decodes the keyword subset this package interprets.
func parseSchemaNode(raw map[string]any) *SchemaNode {
	n := &SchemaNode{}

	switch t := raw["type"].(type) {
	case string:
		n.Types = []string{t}
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok {
				n.Types = append(n.Types, s)
			}
		}
	}

	if ap, ok := raw["additionalProperties"].(bool); ok {
		v := ap
		n.AdditionalProps = &v
	}

	if props, ok := raw["properties"].(map[string]any); ok {
		n.Properties = make(map[string]*SchemaNode, len(props))
		for key, sub := range props {
			if m, ok := sub.(map[string]any); ok {
				n.Properties[key] = parseSchemaNode(m)
			} else {
				n.Properties[key] = &SchemaNode{}
			}
		}
	}

	if items, ok := raw["items"].(map[string]any); ok {
		n.Items = parseSchemaNode(items)
	}

	if enum, ok := raw["enum"].([]any); ok {
		n.Enum = enum
	}

	n.Default = raw["default"]
	return n
}

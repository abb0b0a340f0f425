// internal/config/prune.go
//
// Unknown-property pruner.
//
// Context
// -------
// Version upgrades and hand edits leave properties behind that the current
// schema no longer declares.  The pruner walks the document in lockstep
// with the schema and deletes such keys, but only under object nodes that
// declare additionalProperties: false.  A subtree that permits additional
// properties (explicitly or by omission) is never touched, so user
// extension points survive upgrades.
package config

import (
	"sort"
	"strconv"
)

// RemoveUnknownProperties deletes document keys the schema does not
// declare, reporting each removal by dotted path, and persists the
// document when anything was removed (persist=false skips the disk write;
// used in lenient runs so fixtures are never rewritten).  Returns whether
// the document changed.
func RemoveUnknownProperties(doc *Document, schema *Schema, rep *Report, persist bool) bool {
	if doc == nil || schema == nil || schema.Root == nil {
		return false
	}

	changed := pruneObject(doc.Root(), schema.Root, "", rep)
	if changed && persist {
		if err := doc.Save(); err != nil {
			rep.SaveError("prune", err)
		} else {
			rep.Saved("prune")
		}
	}
	return changed
}

// pruneObject handles one object node.  Deletion order is sorted so the
// report is deterministic across runs.
func pruneObject(obj map[string]any, node *SchemaNode, prefix string, rep *Report) bool {
	changed := false

	strict := node.AdditionalProps != nil && !*node.AdditionalProps
	if strict {
		var unknown []string
		for key := range obj {
			if node.Property(key) == nil {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			delete(obj, key)
			rep.Removed(joinPath(prefix, key))
			changed = true
		}
	}

	for key, val := range obj {
		sub := node.Property(key)
		if sub == nil {
			continue
		}
		switch v := val.(type) {
		case map[string]any:
			if sub.HasType("object") || len(sub.Properties) > 0 {
				if pruneObject(v, sub, joinPath(prefix, key), rep) {
					changed = true
				}
			}
		case []any:
			if sub.Items == nil {
				continue
			}
			for i, el := range v {
				m, ok := el.(map[string]any)
				if !ok {
					continue // arrays of scalars stay untouched
				}
				if pruneObject(m, sub.Items, indexPath(joinPath(prefix, key), i), rep) {
					changed = true
				}
			}
		}
	}
	return changed
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

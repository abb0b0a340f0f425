// internal/config/document.go
//
// In-memory configuration document.
//
// Context
// -------
// The configuration is one hand-editable JSON file.  This type wraps the
// decoded tree (map[string]any, as encoding/json produces it) together with
// the file path it came from, and gives the repair pipeline dotted-path
// accessors so rules read like "doc.Set(\"cinema.orientation\", \"auto\")".
//
// Loading goes through Koanf so the same parser that later feeds the typed
// overlay also feeds the raw tree.  There are two entry points:
// LoadDocument reads the real file, while LoadDocumentBytes accepts bytes
// from an injectable read hook (tests substitute fixtures for the document
// without ever intercepting schema or template reads).
//
// Notes
// -----
//   - Dotted paths address object keys only; array elements are handled by
//     the walks that own them (pruner, migrator).
//   - Save is atomic (temp file + rename) so a crash mid-write can never
//     truncate the user's config.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	koanf "github.com/knadh/koanf/v2"
)

// Document is the mutable configuration tree plus its on-disk location.
type Document struct {
	root map[string]any
	path string
}

// NewDocument wraps an already-decoded tree.  A nil root becomes an empty
// object so the repair rules never see a nil map.
func NewDocument(root map[string]any, path string) *Document {
	if root == nil {
		root = map[string]any{}
	}
	return &Document{root: root, path: path}
}

// LoadDocument reads and parses the configuration file from disk.
func LoadDocument(path string) (*Document, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return NewDocument(k.Raw(), path), nil
}

// LoadDocumentBytes parses configuration bytes that were read elsewhere
// (the document read hook).  The path is kept for later persistence.
func LoadDocumentBytes(data []byte, path string) (*Document, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return NewDocument(k.Raw(), path), nil
}

// Root exposes the underlying tree for walks that need raw access.
func (d *Document) Root() map[string]any { return d.root }

// Path reports where Save will write.
func (d *Document) Path() string { return d.path }

// Get returns the value at a dotted path.
func (d *Document) Get(path string) (any, bool) {
	parent, key, ok := d.resolve(path, false)
	if !ok {
		return nil, false
	}
	v, ok := parent[key]
	return v, ok
}

// GetMap returns the object at a dotted path, or ok=false when the path is
// absent or holds a non-object.
func (d *Document) GetMap(path string) (map[string]any, bool) {
	v, ok := d.Get(path)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// GetString returns the string at a dotted path.
func (d *Document) GetString(path string) (string, bool) {
	v, ok := d.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetNumber returns the numeric value at a dotted path as float64.  JSON
// numbers decode as float64; ints written by repair rules are accepted too.
func (d *Document) GetNumber(path string) (float64, bool) {
	v, ok := d.Get(path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Has reports whether a dotted path exists.
func (d *Document) Has(path string) bool {
	_, ok := d.Get(path)
	return ok
}

// Set writes a value at a dotted path, creating intermediate objects.  A
// non-object intermediate is replaced; callers that must not clobber check
// with Has first.
func (d *Document) Set(path string, v any) {
	parent, key, _ := d.resolve(path, true)
	parent[key] = v
}

// Delete removes a dotted path and reports whether it existed.
func (d *Document) Delete(path string) bool {
	parent, key, ok := d.resolve(path, false)
	if !ok {
		return false
	}
	if _, exists := parent[key]; !exists {
		return false
	}
	delete(parent, key)
	return true
}

// resolve walks to the parent object of the final path segment.  With
// create=true missing or non-object intermediates are replaced by fresh
// objects; otherwise resolution fails.
func (d *Document) resolve(path string, create bool) (map[string]any, string, bool) {
	segs := strings.Split(path, ".")
	cur := d.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			if !create {
				return nil, "", false
			}
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	return cur, segs[len(segs)-1], true
}

// Marshal renders the tree as pretty-printed JSON with a trailing newline,
// the only format ever written back to the user's file.
func (d *Document) Marshal() ([]byte, error) {
	out, err := json.MarshalIndent(d.root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// Save writes the document back to its original path atomically.
func (d *Document) Save() error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("temp config: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, d.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

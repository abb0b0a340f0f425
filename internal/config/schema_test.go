// internal/config/schema_test.go
//
// Tests for schema loading, raw-node parsing, validation error
// normalization, and default injection against the shipped schema.

package config

import (
	"path/filepath"
	"testing"
)

func TestLoadSchemaShipped(t *testing.T) {
	sch := loadTestSchema(t)

	root := sch.Root
	if root == nil || !root.HasType("object") {
		t.Fatalf("root node not parsed as object")
	}
	if root.AdditionalProps == nil || *root.AdditionalProps {
		t.Fatalf("root must declare additionalProperties: false")
	}

	servers := root.Property("mediaServers")
	if servers == nil || servers.Items == nil {
		t.Fatalf("mediaServers items not parsed")
	}
	port := servers.Items.Property("port")
	if port == nil || !port.HasType("integer") || !port.HasType("string") {
		t.Fatalf("port union type not parsed: %+v", port)
	}

	ext := root.Property("extensions")
	if ext == nil || ext.AdditionalProps != nil {
		t.Fatalf("extensions must leave additionalProperties unspecified")
	}
}

func TestLoadSchemaMissingFile(t *testing.T) {
	if _, err := LoadSchema(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing schema")
	}
}

func TestSchemaValidateReportsDottedPaths(t *testing.T) {
	sch := loadTestSchema(t)

	errs := sch.Validate(map[string]any{
		"backgroundRefreshMinutes": 60,
		"cinema":                   map[string]any{"orientation": "sideways"},
	})
	if len(errs) == 0 {
		t.Fatalf("expected at least one schema error")
	}
	found := false
	for _, e := range errs {
		if e.Path == "cinema.orientation" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error at cinema.orientation, got %v", errs)
	}
}

func TestSchemaValidateAcceptsRepairedDocument(t *testing.T) {
	sch := loadTestSchema(t)

	doc := NewDocument(map[string]any{}, "")
	rep := NewReport(nil, true, false)
	MigrateConfig(doc, rep, false)
	sch.ApplyDefaults(doc.Root())

	if errs := sch.Validate(doc.Root()); len(errs) != 0 {
		t.Fatalf("repaired empty document should validate, got %v", errs)
	}
}

func TestApplyDefaults(t *testing.T) {
	sch := loadTestSchema(t)

	root := map[string]any{
		"cinema": map[string]any{},
	}
	n := sch.ApplyDefaults(root)
	if n == 0 {
		t.Fatalf("expected defaults to be injected")
	}
	if root["backgroundRefreshMinutes"] != float64(60) && root["backgroundRefreshMinutes"] != 60 {
		t.Fatalf("backgroundRefreshMinutes default = %v", root["backgroundRefreshMinutes"])
	}
	cin := root["cinema"].(map[string]any)
	if cin["orientation"] != "auto" {
		t.Fatalf("cinema.orientation default = %v", cin["orientation"])
	}

	// Present values are never overwritten.
	root2 := map[string]any{"backgroundRefreshMinutes": 90}
	sch.ApplyDefaults(root2)
	if root2["backgroundRefreshMinutes"] != 90 {
		t.Fatalf("default clobbered explicit value")
	}
}

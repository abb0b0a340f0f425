// internal/config/document_test.go
//
// Unit tests for the Document tree: dotted-path access, mutation, and the
// atomic pretty-printed save.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocumentPathAccess(t *testing.T) {
	doc := NewDocument(map[string]any{
		"cinema":     map[string]any{"orientation": "portrait"},
		"maxPosters": float64(42),
	}, "")

	if s, ok := doc.GetString("cinema.orientation"); !ok || s != "portrait" {
		t.Fatalf("GetString = %q, %v", s, ok)
	}
	if n, ok := doc.GetNumber("maxPosters"); !ok || n != 42 {
		t.Fatalf("GetNumber = %v, %v", n, ok)
	}
	if _, ok := doc.Get("cinema.missing"); ok {
		t.Fatalf("expected miss for absent key")
	}
	if _, ok := doc.GetMap("maxPosters"); ok {
		t.Fatalf("GetMap on scalar should miss")
	}
}

func TestDocumentSetCreatesIntermediates(t *testing.T) {
	doc := NewDocument(nil, "")
	doc.Set("display.accentColor", "#1E88E5")

	m, ok := doc.GetMap("display")
	if !ok {
		t.Fatalf("display not created")
	}
	if m["accentColor"] != "#1E88E5" {
		t.Fatalf("unexpected value: %v", m["accentColor"])
	}
}

func TestDocumentDelete(t *testing.T) {
	doc := NewDocument(map[string]any{
		"cinema": map[string]any{"ambilight": true},
	}, "")

	if !doc.Delete("cinema.ambilight") {
		t.Fatalf("expected delete to report true")
	}
	if doc.Delete("cinema.ambilight") {
		t.Fatalf("second delete should report false")
	}
	if doc.Delete("never.existed") {
		t.Fatalf("delete of absent path should report false")
	}
}

func TestDocumentSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	doc := NewDocument(map[string]any{
		"backgroundRefreshMinutes": 60,
		"cinema":                   map[string]any{"orientation": "auto"},
	}, path)
	if err := doc.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Fatalf("expected trailing newline")
	}
	if !strings.Contains(string(raw), "  \"cinema\"") {
		t.Fatalf("expected pretty-printed output, got:\n%s", raw)
	}

	again, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s, _ := again.GetString("cinema.orientation"); s != "auto" {
		t.Fatalf("round trip lost data: %q", s)
	}
}

func TestLoadDocumentBytesRejectsGarbage(t *testing.T) {
	if _, err := LoadDocumentBytes([]byte("{not json"), "x.json"); err == nil {
		t.Fatalf("expected parse error")
	}
}

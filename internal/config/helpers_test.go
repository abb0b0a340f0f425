// internal/config/helpers_test.go
//
// Shared fixtures for the pipeline tests: a temp application root seeded
// with the real shipped schema, plus an observed zap logger so tests can
// assert on emitted lines and their order.

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestRoot builds <tmp>/conf with the repo's real schema and minimal
// templates.  The env.example holds only comments so godotenv never
// pollutes the test process environment.
func newTestRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	confDir := filepath.Join(root, "conf")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatalf("mkdir conf: %v", err)
	}

	schema, err := os.ReadFile(filepath.Join(rootDir(), "conf", SchemaFileName))
	if err != nil {
		t.Fatalf("read shipped schema: %v", err)
	}
	mustWrite(t, filepath.Join(confDir, SchemaFileName), schema)
	mustWrite(t, filepath.Join(confDir, ConfigExample), []byte(`{"mediaServers": []}`+"\n"))
	mustWrite(t, filepath.Join(confDir, EnvExample), []byte("# test env\n"))
	return root
}

// writeConfig drops a configuration document into the test root.
func writeConfig(t *testing.T, root string, doc map[string]any) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	mustWrite(t, filepath.Join(root, "conf", ConfigFileName), append(data, '\n'))
}

func mustWrite(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// observedLogger returns a debug-level sugared logger that records every
// entry for assertions.
func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

// loadTestSchema compiles the shipped schema once per test that needs it.
func loadTestSchema(t *testing.T) *Schema {
	t.Helper()
	sch, err := LoadSchema(filepath.Join(rootDir(), "conf", SchemaFileName))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return sch
}

// emptyEnv is a Getenv stub with nothing set.
func emptyEnv(string) string { return "" }

// envMap builds a Getenv stub from a map.
func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

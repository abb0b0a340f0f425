// internal/config/provision.go
//
// Template provisioner.
//
// Context
// -------
// First boot on a fresh install has no config.json and no .env.  The
// provisioner seeds both from the example templates shipped in conf/, so
// the rest of the pipeline can assume the files exist.  A second run is a
// no-op.  Templates are release artifacts: they are read with os.ReadFile
// directly, never through the document read hook.
//
// A freshly seeded (or pre-existing) .env is then loaded with godotenv so
// variables defined there count toward the required-variable check.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// File names under the conf/ directory.
const (
	ConfigFileName = "config.json"
	ConfigExample  = "config.example.json"
	SchemaFileName = "config.schema.json"
	EnvFileName    = ".env"
	EnvExample     = "env.example"
)

// provisionTemplates ensures the secrets file and the configuration file
// exist, seeding each from its example.  A missing template is returned as
// an error; the caller decides fatality by mode.
func provisionTemplates(confDir string, log *zap.SugaredLogger) error {
	pairs := []struct{ target, template string }{
		{EnvFileName, EnvExample},
		{ConfigFileName, ConfigExample},
	}

	for _, p := range pairs {
		target := filepath.Join(confDir, p.target)
		if _, err := os.Stat(target); err == nil {
			continue
		}
		template := filepath.Join(confDir, p.template)
		data, err := os.ReadFile(template)
		if err != nil {
			return fmt.Errorf("template %s is missing: %w", template, err)
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return fmt.Errorf("seed %s: %w", target, err)
		}
		log.Infow("seeded file from template", "file", target, "template", template)
	}

	// Values already present in the process environment win over .env.
	_ = godotenv.Load(filepath.Join(confDir, EnvFileName))
	return nil
}

// internal/config/manager.go
//
// Configuration manager and boot pipeline.
//
// Context
// -------
// Boot() runs the whole integrity pipeline once, synchronously, before any
// other module may read configuration values:
//
//  1. Resolve the conf/ root (MEDIAWALL_ROOT or directory climb).
//  2. Provision config.json and .env from example templates.
//  3. Load and compile the JSON Schema.
//  4. Load the document (through the injectable read hook).
//  5. Relocate legacy paths, prune unknown properties, migrate, inject
//     schema defaults.
//  6. Run the startup validator (env check before schema report).
//  7. Resolve secret references in memory.
//  8. Overlay MEDIAWALL_-prefixed environment variables via Koanf and
//     unmarshal the typed Config, validating its struct tags.
//  9. Emit the single maintenance summary line.
//
// The Manager is an explicit, constructed object owned by the process
// entry point and injected into consumers; there is no ambient global.
// Repeated Boot calls against the same on-disk state reproduce the same
// outcome, which is what makes the pipeline testable.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/mediawall/mediawall/internal/secrets"
)

// envPrefix maps MEDIAWALL_DISPLAY__ACCENT_COLOR to display.accentColor;
// double underscore separates path segments.
const envPrefix = "MEDIAWALL_"

// Options configures one pipeline run.
type Options struct {
	// Root is the directory containing conf/; discovered when empty.
	Root string
	// Mode selects fatal (Strict) or recoverable (Lenient) handling.
	Mode Mode
	// Quiet suppresses per-event reporter output.  Left nil, Lenient
	// non-verbose runs default to quiet so large test suites stay
	// readable; a caller may force either setting.
	Quiet *bool
	// Verbose forces per-event output and full schema error listings.
	Verbose bool
	// ReadFile, when set, intercepts document reads only.  Schema and
	// template reads always hit the real filesystem.
	ReadFile func(string) ([]byte, error)
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Exit defaults to os.Exit; tests inject a recorder.
	Exit func(int)
	// Logger defaults to zap.S().
	Logger *zap.SugaredLogger
}

// Manager owns the validated configuration for the process lifetime.
// After Boot returns, Revalidate and the accessors may be called from
// concurrent goroutines; mu serializes them.
type Manager struct {
	opts   Options
	root   string
	quiet  bool
	schema *Schema
	log    *zap.SugaredLogger

	mu     sync.Mutex
	doc    *Document
	report *Report
	cfg    *Config

	getenv func(string) string
	exit   func(int)
}

// Boot runs the pipeline.  In Strict mode boot-gating failures terminate
// the process; in Lenient mode they surface as an error (fatal categories)
// or a false Valid flag, so tests can keep going.
func Boot(opts Options) (*Manager, error) {
	m := &Manager{
		opts:   opts,
		log:    opts.Logger,
		getenv: opts.Getenv,
		exit:   opts.Exit,
	}
	if m.log == nil {
		m.log = zap.S()
	}
	if m.getenv == nil {
		m.getenv = os.Getenv
	}
	if m.exit == nil {
		m.exit = os.Exit
	}
	m.quiet = opts.Mode == Lenient && !opts.Verbose
	if opts.Quiet != nil {
		m.quiet = *opts.Quiet
	}

	m.root = opts.Root
	if m.root == "" {
		m.root = rootDir()
	}
	confDir := filepath.Join(m.root, "conf")
	m.log.Debugw("config root resolved", "root", m.root)

	// Provision templates; missing templates are fatal in Strict mode.
	if err := provisionTemplates(confDir, m.log); err != nil {
		m.fatal(err.Error())
		m.log.Warnw("continuing without provisioned templates", "err", err)
	}

	// Schema; unreadable or unparseable is fatal in Strict mode.
	sch, err := LoadSchema(filepath.Join(confDir, SchemaFileName))
	if err != nil {
		m.fatal(err.Error())
		m.log.Warnw("continuing without schema", "err", err)
	}
	m.schema = sch

	// Document; a broken file is fatal in Strict mode, while Lenient
	// substitutes an empty document so the pipeline can continue.
	doc, err := m.loadDocument(filepath.Join(confDir, ConfigFileName))
	if err != nil {
		m.fatal(err.Error())
		m.log.Warnw("continuing with empty document", "err", err)
		doc = NewDocument(nil, filepath.Join(confDir, ConfigFileName))
	}
	m.doc = doc

	persist := m.opts.Mode == Strict
	m.report = NewReport(m.log, m.quiet, m.opts.Verbose)

	// Legacy paths first: the root schema declares additionalProperties
	// false, so the pruner would delete a not-yet-relocated value.
	MigrateStructure(m.doc, m.report, persist)
	RemoveUnknownProperties(m.doc, m.schema, m.report, persist)
	MigrateConfig(m.doc, m.report, persist)
	if m.schema != nil {
		m.schema.ApplyDefaults(m.doc.Root())
	}

	// In Strict mode a gating failure has already exited; reaching this
	// branch there means a test injected a non-exiting Exit.
	if !m.Validate() {
		m.report.EmitSummary("boot")
		return m, errors.New("configuration failed validation")
	}

	if err := m.resolveSecrets(); err != nil {
		m.fatal(err.Error())
		m.report.EmitSummary("boot")
		return m, err
	}

	cfg, err := m.unmarshalTyped()
	if err != nil {
		m.fatal(err.Error())
		m.report.EmitSummary("boot")
		return m, err
	}
	m.cfg = cfg

	m.report.EmitSummary("boot")
	return m, nil
}

// Config returns the validated typed aggregate.
func (m *Manager) Config() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Document returns the live repaired tree.  Callers that may overlap with
// a Revalidate use Snapshot instead.
func (m *Manager) Document() *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc
}

// Snapshot returns a deep copy of the current document tree, safe to walk
// while a concurrent Revalidate mutates the live one.
func (m *Manager) Snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, _ := cloneValue(m.doc.Root()).(map[string]any)
	return out
}

// Report returns the maintenance report of the most recent pipeline run,
// boot or revalidate.
func (m *Manager) Report() *Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}

// Root returns the resolved application root.
func (m *Manager) Root() string { return m.root }

// Revalidate re-runs the repair pipeline and validation against the
// current on-disk document without terminating on failure.
// Configuration-editing flows call it after an external edit or restore.
// The returned report describes what was repaired and stays available via
// Report until the next run; ok reports the validation verdict.
func (m *Manager) Revalidate() (rep *Report, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prevMode := m.opts.Mode
	m.opts.Mode = Lenient
	defer func() { m.opts.Mode = prevMode }()
	persist := prevMode == Strict

	doc, err := m.loadDocument(filepath.Join(m.root, "conf", ConfigFileName))
	if err != nil {
		m.log.Warnw("revalidate: document unreadable, using empty document", "err", err)
		doc = NewDocument(nil, filepath.Join(m.root, "conf", ConfigFileName))
	}
	m.doc = doc

	rep = NewReport(m.log, m.quiet, m.opts.Verbose)
	m.report = rep

	MigrateStructure(m.doc, rep, persist)
	RemoveUnknownProperties(m.doc, m.schema, rep, persist)
	MigrateConfig(m.doc, rep, persist)
	if m.schema != nil {
		m.schema.ApplyDefaults(m.doc.Root())
	}
	ok = m.Validate()

	if ok {
		if cfg, err := m.unmarshalTyped(); err == nil {
			m.cfg = cfg
		} else {
			m.log.Warnw("revalidate: typed unmarshal failed", "err", err)
			ok = false
		}
	}
	rep.EmitSummary("revalidate")
	return rep, ok
}

// loadDocument reads the configuration file, honouring the read hook.
func (m *Manager) loadDocument(path string) (*Document, error) {
	if m.opts.ReadFile != nil {
		data, err := m.opts.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return LoadDocumentBytes(data, path)
	}
	return LoadDocument(path)
}

// resolveSecrets expands env:/vault: references on token fields in memory.
func (m *Manager) resolveSecrets() error {
	r := secrets.NewResolver(m.getenv)
	ctx := context.Background()

	if servers, ok := m.doc.Get("mediaServers"); ok {
		list, _ := servers.([]any)
		for _, el := range list {
			entry, ok := el.(map[string]any)
			if !ok {
				continue
			}
			ref, _ := entry["token"].(string)
			val, err := r.Resolve(ctx, ref)
			if err != nil {
				name, _ := entry["name"].(string)
				return fmt.Errorf("resolve token for server %q: %w", name, err)
			}
			if val != ref {
				entry["token"] = val
			}
		}
	}

	if ref, ok := m.doc.GetString("tmdb.apiKey"); ok {
		val, err := r.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("resolve tmdb api key: %w", err)
		}
		if val != ref {
			m.doc.Set("tmdb.apiKey", val)
		}
	}
	return nil
}

// unmarshalTyped overlays environment variables on the repaired tree and
// produces the typed Config.
func (m *Manager) unmarshalTyped() (*Config, error) {
	data, err := m.doc.Marshal()
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("koanf load: %w", err)
	}

	// Env overrides: MEDIAWALL_DISPLAY__ACCENT_COLOR → display.accentColor.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		return nil, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := validateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// rootDir resolves MEDIAWALL_ROOT or climbs directories until
// conf/config.schema.json is found.  Falls back to the executable layout
// heuristic for production installs.
func rootDir() string {
	if r := os.Getenv("MEDIAWALL_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", SchemaFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

// internal/config/validate.go
//
// Startup validator.
//
// Context
// -------
// The final gate before the rest of the process may read configuration
// values.  Reporting order is a contract, not an accident: missing
// environment variables are diagnosed before schema errors so the most
// fundamental problem is never buried under a wall of per-field messages.
//
// Mode is explicit.  Strict (production) terminates the process through an
// injectable exit function; Lenient (tests, CI, the revalidate API) logs
// and returns false so the caller's state machine stays alive.
package config

import (
	"fmt"
	"os"
)

// Mode selects fatal versus recoverable handling of boot-gating failures.
type Mode int

const (
	// Strict terminates the process on any boot-gating failure.
	Strict Mode = iota
	// Lenient reports failures and returns instead of terminating.
	Lenient
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// placeholderTokens are sample values shipped in templates and docs; a
// required token variable holding one of these gets a replacement nag.
var placeholderTokens = map[string]bool{
	"your-plex-token-here":     true,
	"your-jellyfin-token-here": true,
	"changeme":                 true,
	"REPLACE_ME":               true,
	"xxxx":                     true,
}

// Validate runs the startup gate against the already pruned and migrated
// document.  Returns true when the process may continue.  In Strict mode a
// failure calls the exit function (default os.Exit) and, should that
// return, false is still reported so tests can inject a non-exiting stub.
//
// Order, by contract:
//
//  1. Schema validation runs first but its outcome is held back.
//  2. The Required-Variable Set is derived from document content.
//  3. Missing required variables are reported, fatally in Strict mode.
//  4. Only now is the schema outcome reported.
//  5. Placeholder token values draw non-fatal warnings.
func (m *Manager) Validate() bool {
	// 1. Capture, do not report yet.
	var schemaErrs []SchemaError
	schemaOK := true
	if m.schema != nil {
		schemaErrs = m.schema.Validate(m.doc.Root())
		schemaOK = len(schemaErrs) == 0
	} else {
		m.log.Warnw("schema unavailable, skipping schema validation")
	}

	// 2. Required variables from document content.
	adminCreds := m.getenv("ADMIN_USERNAME") != "" && m.getenv("ADMIN_PASSWORD_HASH") != ""
	req, issues := RequiredVars(m.doc.Root(), adminCreds)
	for _, is := range issues {
		m.log.Warnw("media source is misconfigured and will be disabled",
			"server", is.Server, "missing", is.Field)
	}

	// 3. Environment check, reported before any schema error.
	var missing []string
	for _, name := range req.Vars {
		if m.getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		m.log.Errorw("required environment variables are not set", "count", len(missing))
		for _, name := range missing {
			m.log.Errorw("missing required environment variable", "name", name)
		}
		m.fatal(fmt.Sprintf("missing required environment variables: %v", missing))
		return false
	}

	// 4. Schema outcome.
	if !schemaOK {
		if m.opts.Mode == Strict || m.opts.Verbose {
			for _, e := range schemaErrs {
				m.log.Errorw("config schema violation", "path", e.Path, "error", e.Message)
			}
		} else {
			// Keep CI logs readable across many runs.
			m.log.Errorw("configuration does not conform to schema", "errors", len(schemaErrs))
		}
		m.fatal(fmt.Sprintf("configuration does not conform to schema (%d errors)", len(schemaErrs)))
		return false
	}

	// 5. Placeholder nags, never fatal.
	for _, name := range req.TokenVars {
		if placeholderTokens[m.getenv(name)] {
			m.log.Warnw("token variable holds a placeholder value, replace it",
				"name", name)
		}
	}

	return true
}

// fatal handles a boot-gating failure.  In Strict mode it logs through the
// structured logger, writes one line straight to stderr (operational
// tooling greps console output), and calls the exit function.  In Lenient
// mode it is a no-op; the caller returns false instead.
func (m *Manager) fatal(msg string) {
	if m.opts.Mode != Strict {
		return
	}
	m.log.Errorw("fatal configuration error", "err", msg)
	fmt.Fprintln(os.Stderr, "mediawall: fatal configuration error: "+msg)
	m.exit(1)
}

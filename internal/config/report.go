// internal/config/report.go
//
// Maintenance reporter.
//
// Context
// -------
// Every boot-time repair, migration, and pruning event funnels through one
// Report so the pipeline emits at most a single summary line per run
// instead of a scroll of per-field chatter.  Individual events still log at
// debug unless the reporter is quiet; verbose overrides quiet for
// diagnosing a specific run.
//
// Counters are mirrored into the Prometheus instruments so operators can
// watch repair churn across restarts without grepping logs.
package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mediawall/mediawall/internal/metrics"
)

// Report accumulates repair and migration events for one pipeline run.
// Construct with NewReport; the zero value has no logger.
type Report struct {
	log     *zap.SugaredLogger
	quiet   bool
	verbose bool

	Migrations     int
	Repairs        int
	RemovedUnknown int
	SavedWrites    int
	SaveErrors     int
	Notes          []string
}

// NewReport builds a fresh reporter.  quiet suppresses per-event debug
// lines; verbose wins over quiet and also forces the end-of-run summary.
func NewReport(log *zap.SugaredLogger, quiet, verbose bool) *Report {
	if log == nil {
		log = zap.S()
	}
	return &Report{log: log, quiet: quiet, verbose: verbose}
}

func (r *Report) loud() bool { return r.verbose || !r.quiet }

// Migration records one structural or value migration.
func (r *Report) Migration(msg string, kv ...any) {
	r.Migrations++
	metrics.ConfigMigrationsTotal.Inc()
	if r.loud() {
		r.log.Debugw("config migration: "+msg, kv...)
	}
}

// Repair records one value repair.
func (r *Report) Repair(msg string, kv ...any) {
	r.Repairs++
	metrics.ConfigRepairsTotal.Inc()
	if r.loud() {
		r.log.Debugw("config repair: "+msg, kv...)
	}
}

// Removed records the pruning of one unknown property.
func (r *Report) Removed(path string) {
	r.RemovedUnknown++
	metrics.ConfigUnknownRemovedTotal.Inc()
	if r.loud() {
		r.log.Debugw("removed unknown config property", "path", path)
	}
}

// Saved records a successful write-back of the repaired document.
func (r *Report) Saved(kind string) {
	r.SavedWrites++
	if r.loud() {
		r.log.Debugw("config saved", "after", kind)
	}
}

// SaveError records a failed write-back.  Persistence failures never
// escalate; a read-only filesystem degrades to repaired-in-memory.
func (r *Report) SaveError(kind string, err error) {
	r.SaveErrors++
	metrics.ConfigSaveErrorsTotal.Inc()
	r.log.Warnw("config save failed", "after", kind, "err", err)
}

// Note records a free-text observation.
func (r *Report) Note(msg string) {
	r.Notes = append(r.Notes, msg)
	if r.loud() {
		r.log.Debugw("config note", "note", msg)
	}
}

// Changed reports whether any mutation was recorded.
func (r *Report) Changed() bool {
	return r.Migrations > 0 || r.Repairs > 0 || r.RemovedUnknown > 0
}

// Summary renders the one-line human form used by the summary log and the
// revalidate API response.
func (r *Report) Summary() string {
	return fmt.Sprintf("migrations=%d repairs=%d removedUnknown=%d saved=%d saveErrors=%d notes=%d",
		r.Migrations, r.Repairs, r.RemovedUnknown, r.SavedWrites, r.SaveErrors, len(r.Notes))
}

// EmitSummary writes exactly one info line when verbose is on or any
// counter is non-zero; otherwise it is a no-op.
func (r *Report) EmitSummary(context string) {
	if !r.verbose && !r.Changed() && r.SavedWrites == 0 && r.SaveErrors == 0 && len(r.Notes) == 0 {
		return
	}
	r.log.Infow("config maintenance summary",
		"context", context,
		"migrations", r.Migrations,
		"repairs", r.Repairs,
		"removedUnknown", r.RemovedUnknown,
		"saved", r.SavedWrites,
		"saveErrors", r.SaveErrors,
		"notes", len(r.Notes),
	)
}

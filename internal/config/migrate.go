// internal/config/migrate.go
//
// Config migrator.
//
// Context
// -------
// A deterministic, ordered sequence of idempotent repair rules that lift an
// older or hand-mangled configuration to the current schema's expectations.
// Ordering matters only across categories (objects are scaffolded before
// rules write into them); within a category every rule decides for itself
// whether its field needs changing, so rules stay reorderable and
// independently testable.
//
// Rule categories, in order:
//
//  1. Scalar default/bounds repair (declarative boundsRules table).
//  2. Nested-object scaffolding (requiredObjects).
//  3. Cross-cutting transition-effect renames via the transitions package
//     (before the enum rules, so legacy names are rewritten, not reset).
//  4. Enum normalization with legacy remaps (declarative enumRules table;
//     remaps run before the membership check so a renamed value is not
//     mistaken for garbage).
//  5. Deprecated-property removal (deprecatedPaths).
//  6. Structural relocation (relocations; copy only when the destination
//     is empty, then delete the old path).
//  7. Format repair (accent color hex pattern).
//  8. Media-server entry normalization (string ports → integers).
//  9. Persistence, when anything changed.
//
// Rules 5 and 6 reference paths the schema no longer declares, so the boot
// pipeline also runs them standalone (MigrateStructure) ahead of the
// unknown-property pruner.
package config

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mediawall/mediawall/internal/transitions"
)

//
// Rule tables
//

// boundsRule repairs one numeric setting: absent, non-numeric, or
// out-of-range values are replaced by the documented default.
type boundsRule struct {
	path     string
	min, max float64
	def      int
}

var boundsRules = []boundsRule{
	{path: "backgroundRefreshMinutes", min: 5, max: 1440, def: 60},
	{path: "transitionIntervalSeconds", min: 5, max: 300, def: 15},
	{path: "maxPosters", min: 10, max: 500, def: 60},
}

// requiredObjects are sections later rules write into; each must exist as
// an object even in a minimal document.
var requiredObjects = []string{"cinema", "display", "wallart", "romm"}

// enumRule repairs one string-enumerated setting.  remap runs first so a
// legacy spelling becomes its modern equivalent instead of falling through
// to the default.
type enumRule struct {
	path  string
	valid []string
	def   string
	remap map[string]string
}

var enumRules = []enumRule{
	{
		path:  "cinema.orientation",
		valid: []string{"auto", "portrait", "portrait-flipped"},
		def:   "auto",
		remap: map[string]string{"reverse-portrait": "portrait-flipped"},
	},
	{
		path:  "display.transitionEffect",
		valid: []string{"fade", "slide", "ken-burns", "none"},
		def:   "fade",
	},
	{
		path:  "wallart.layout",
		valid: []string{"grid", "hero", "mosaic"},
		def:   "grid",
	},
	{
		path:  "romm.artwork",
		valid: []string{"cover", "screenshot"},
		def:   "cover",
	},
}

// deprecatedPaths no longer exist in the schema but appear in documents
// written by older releases.
var deprecatedPaths = []string{
	"backgroundOpacity",
	"clockFormat",
	"useGpuTransitions",
	"cinema.ambilight",
}

// relocation moves a value from its pre-rename path to the current one.
type relocation struct {
	from, to string
}

var relocations = []relocation{
	{from: "transitionEffect", to: "display.transitionEffect"},
	{from: "wallartMode.refreshRate", to: "wallart.refreshMinutes"},
}

var accentColorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

const defaultAccentColor = "#1E88E5"

//
// Engine
//

// MigrateConfig applies every repair rule to the document, reporting into
// rep, and persists the result when anything changed (persist=false skips
// the write; lenient runs never touch fixtures on disk).  Returns whether
// the document changed.  Safe on an empty document.
func MigrateConfig(doc *Document, rep *Report, persist bool) bool {
	changed := false

	// 1. Scalar bounds.
	for _, r := range boundsRules {
		if repairBounds(doc, r, rep) {
			changed = true
		}
	}

	// 2. Scaffolding before anything writes into nested sections.
	for _, path := range requiredObjects {
		if ensureObject(doc, path, rep) {
			changed = true
		}
	}

	// 3. Transition-effect renames across the whole document.  Must run
	// before the enum rules so a legacy name is rewritten, not reset.
	if transitions.Normalize(doc.Root()) {
		rep.Migration("renamed legacy transition effects")
		changed = true
	}

	// 4. Enums, remaps first.
	for _, r := range enumRules {
		if repairEnum(doc, r, rep) {
			changed = true
		}
	}

	// 5.+6. Deprecated properties and relocations.  Boot already ran these
	// before pruning; repeating them here keeps a lone MigrateConfig call
	// complete, and idempotence makes the repeat a no-op.
	if MigrateStructure(doc, rep, false) {
		changed = true
	}

	// 7. Accent color format.
	if repairAccentColor(doc, rep) {
		changed = true
	}

	// 8. Media-server entries.
	if normalizeServers(doc, rep) {
		changed = true
	}

	// 9. Persistence.
	if changed && persist {
		if err := doc.Save(); err != nil {
			rep.SaveError("migrate", err)
		} else {
			rep.Saved("migrate")
		}
	}
	return changed
}

// MigrateStructure applies the repair rules whose source paths the schema
// no longer declares: deprecated-property removal and legacy-path
// relocation.  The boot pipeline runs it before the unknown-property
// pruner; under the root's additionalProperties:false the pruner would
// otherwise delete a legacy top-level value (transitionEffect,
// wallartMode) as unknown before it could be moved.  Returns whether the
// document changed.
func MigrateStructure(doc *Document, rep *Report, persist bool) bool {
	changed := false

	for _, path := range deprecatedPaths {
		if doc.Delete(path) {
			rep.Migration("removed deprecated property", "path", path)
			changed = true
		}
	}
	for _, r := range relocations {
		if relocate(doc, r, rep) {
			changed = true
		}
	}

	if changed && persist {
		if err := doc.Save(); err != nil {
			rep.SaveError("migrate", err)
		} else {
			rep.Saved("migrate")
		}
	}
	return changed
}

// repairBounds resets a numeric setting to its default when it is absent,
// non-numeric, or out of range.
func repairBounds(doc *Document, r boundsRule, rep *Report) bool {
	if v, ok := doc.GetNumber(r.path); ok && v >= r.min && v <= r.max {
		return false
	}
	cur, _ := doc.Get(r.path)
	doc.Set(r.path, r.def)
	rep.Migration("reset numeric setting to default",
		"path", r.path, "was", fmt.Sprintf("%v", cur), "now", r.def)
	return true
}

// ensureObject creates an empty object at path when it is absent or holds
// a non-object.
func ensureObject(doc *Document, path string, rep *Report) bool {
	if _, ok := doc.GetMap(path); ok {
		return false
	}
	doc.Set(path, map[string]any{})
	rep.Migration("ensured configuration section exists", "path", path)
	return true
}

// repairEnum applies the legacy remap, then replaces any value outside the
// valid set with the documented default.  An absent value is left absent;
// the schema's default injection covers it.
func repairEnum(doc *Document, r enumRule, rep *Report) bool {
	cur, ok := doc.GetString(r.path)
	if !ok {
		if _, present := doc.Get(r.path); !present {
			return false
		}
		// Present but not a string: fall through to the default.
		cur = ""
	}

	if mapped, ok := r.remap[cur]; ok {
		doc.Set(r.path, mapped)
		rep.Migration("remapped legacy value", "path", r.path, "was", cur, "now", mapped)
		return true
	}
	for _, v := range r.valid {
		if cur == v {
			return false
		}
	}
	doc.Set(r.path, r.def)
	rep.Migration("reset enum setting to default", "path", r.path, "was", cur, "now", r.def)
	return true
}

// relocate copies a value from its old path to the new one unless the new
// path already holds a value, then removes the old path.  The user's
// explicit new-style setting always wins.
func relocate(doc *Document, r relocation, rep *Report) bool {
	old, ok := doc.Get(r.from)
	if !ok {
		return false
	}
	if !doc.Has(r.to) {
		doc.Set(r.to, old)
	}
	doc.Delete(r.from)
	rep.Migration("relocated setting", "from", r.from, "to", r.to)
	return true
}

// repairAccentColor replaces an out-of-pattern color with the default.
func repairAccentColor(doc *Document, rep *Report) bool {
	cur, ok := doc.GetString("display.accentColor")
	if !ok {
		if _, present := doc.Get("display.accentColor"); !present {
			return false
		}
		cur = ""
	}
	if accentColorPattern.MatchString(cur) {
		return false
	}
	doc.Set("display.accentColor", defaultAccentColor)
	rep.Migration("reset accent color to default",
		"path", "display.accentColor", "was", cur, "now", defaultAccentColor)
	return true
}

// normalizeServers coerces string ports in mediaServers entries to
// integers.  The schema accepts both (union type); the typed overlay wants
// an int.
func normalizeServers(doc *Document, rep *Report) bool {
	raw, ok := doc.Get("mediaServers")
	if !ok {
		return false
	}
	servers, ok := raw.([]any)
	if !ok {
		return false
	}

	changed := false
	for i, el := range servers {
		entry, ok := el.(map[string]any)
		if !ok {
			continue
		}
		s, ok := entry["port"].(string)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			continue // schema validation will flag it
		}
		entry["port"] = n
		rep.Repair("coerced server port to integer",
			"path", indexPath("mediaServers", i)+".port", "value", n)
		changed = true
	}
	return changed
}

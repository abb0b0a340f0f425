// internal/transitions/normalize.go
//
// Legacy transition-effect renames.
//
// Context
// -------
// Several releases ago the transition effects were renamed (kenburns grew a
// hyphen, crossfade collapsed into fade, slideLeft/slideRight merged into
// slide).  Old configuration files still carry the old identifiers in any
// field that names an effect, including per-profile effect cycles, so the
// rename has to sweep the whole document rather than a fixed field list.
//
// The migrator calls Normalize as its compatibility step and folds the
// result into its migration counter.
package transitions

// legacy maps retired effect identifiers to their current names.
var legacy = map[string]string{
	"kenburns":   "ken-burns",
	"crossfade":  "fade",
	"slideLeft":  "slide",
	"slideRight": "slide",
	"dissolve":   "fade",
}

// effectKeys are the property names whose string values name an effect.
var effectKeys = map[string]bool{
	"transitionEffect": true,
	"effectCycle":      true,
}

// Rename returns the current identifier for an effect name and whether it
// differs from the input.
func Rename(effect string) (string, bool) {
	if cur, ok := legacy[effect]; ok {
		return cur, true
	}
	return effect, false
}

// Normalize walks the document tree and rewrites every legacy effect
// identifier in place.  Only values under effect-naming keys are touched,
// either directly ("transitionEffect": "kenburns") or as string elements of
// an array ("effectCycle": ["kenburns", "fade"]).  Returns whether anything
// changed.
func Normalize(root map[string]any) bool {
	return walkObject(root)
}

func walkObject(obj map[string]any) bool {
	changed := false
	for key, val := range obj {
		switch v := val.(type) {
		case string:
			if effectKeys[key] {
				if cur, ok := Rename(v); ok {
					obj[key] = cur
					changed = true
				}
			}
		case []any:
			if effectKeys[key] {
				for i, el := range v {
					s, ok := el.(string)
					if !ok {
						continue
					}
					if cur, ok := Rename(s); ok {
						v[i] = cur
						changed = true
					}
				}
				continue
			}
			for _, el := range v {
				if m, ok := el.(map[string]any); ok {
					if walkObject(m) {
						changed = true
					}
				}
			}
		case map[string]any:
			if walkObject(v) {
				changed = true
			}
		}
	}
	return changed
}

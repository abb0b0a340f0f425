// internal/transitions/normalize_test.go
//
// Rename-table tests: legacy identifiers are rewritten wherever an
// effect-naming key appears, and nothing else is touched.

package transitions

import "testing"

func TestRename(t *testing.T) {
	if got, changed := Rename("kenburns"); got != "ken-burns" || !changed {
		t.Fatalf("Rename(kenburns) = %q, %v", got, changed)
	}
	if got, changed := Rename("fade"); got != "fade" || changed {
		t.Fatalf("current names must pass through, got %q, %v", got, changed)
	}
}

func TestNormalizeSweepsNestedDocuments(t *testing.T) {
	root := map[string]any{
		"display": map[string]any{
			"transitionEffect": "crossfade",
			"effectCycle":      []any{"kenburns", "slide", "dissolve"},
		},
		"profiles": []any{
			map[string]any{"name": "night", "transitionEffect": "slideLeft"},
		},
	}

	if !Normalize(root) {
		t.Fatalf("expected changes")
	}

	display := root["display"].(map[string]any)
	if display["transitionEffect"] != "fade" {
		t.Fatalf("transitionEffect = %v", display["transitionEffect"])
	}
	cycle := display["effectCycle"].([]any)
	if cycle[0] != "ken-burns" || cycle[1] != "slide" || cycle[2] != "fade" {
		t.Fatalf("effectCycle = %v", cycle)
	}
	profile := root["profiles"].([]any)[0].(map[string]any)
	if profile["transitionEffect"] != "slide" {
		t.Fatalf("nested array element not normalized: %v", profile["transitionEffect"])
	}
}

func TestNormalizeLeavesUnrelatedStrings(t *testing.T) {
	root := map[string]any{
		"name":  "kenburns", // not an effect key
		"notes": []any{"crossfade"},
	}
	if Normalize(root) {
		t.Fatalf("unrelated keys must not change")
	}
	if root["name"] != "kenburns" {
		t.Fatalf("name mutated: %v", root["name"])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	root := map[string]any{
		"display": map[string]any{"transitionEffect": "kenburns"},
	}
	if !Normalize(root) {
		t.Fatalf("first pass should change")
	}
	if Normalize(root) {
		t.Fatalf("second pass must be a no-op")
	}
}

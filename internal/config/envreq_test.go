// internal/config/envreq_test.go
//
// Required-variable derivation is a pure function of the document; these
// tests exercise it with no environment or filesystem at all.

package config

import (
	"reflect"
	"testing"
)

func server(name, kind string, enabled bool, extra map[string]any) map[string]any {
	m := map[string]any{"name": name, "type": kind, "enabled": enabled}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func TestRequiredVarsEnabledOnly(t *testing.T) {
	root := map[string]any{
		"mediaServers": []any{
			server("a", "plex", true, map[string]any{
				"host": "h", "port": float64(32400), "tokenEnvVar": "PLEX_TOKEN",
			}),
			server("b", "jellyfin", false, map[string]any{
				"host": "h", "port": float64(8096), "tokenEnvVar": "JELLYFIN_TOKEN",
			}),
		},
	}
	req, issues := RequiredVars(root, false)
	if !reflect.DeepEqual(req.Vars, []string{"PLEX_TOKEN"}) {
		t.Fatalf("Vars = %v", req.Vars)
	}
	if !reflect.DeepEqual(req.TokenVars, []string{"PLEX_TOKEN"}) {
		t.Fatalf("TokenVars = %v", req.TokenVars)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestRequiredVarsToggleDiffersExactly(t *testing.T) {
	build := func(enabled bool) map[string]any {
		return map[string]any{
			"mediaServers": []any{
				server("a", "plex", true, map[string]any{
					"host": "h", "port": float64(1), "tokenEnvVar": "PLEX_TOKEN",
				}),
				server("b", "jellyfin", enabled, map[string]any{
					"host": "h", "port": float64(2), "tokenEnvVar": "JELLYFIN_TOKEN",
				}),
			},
		}
	}
	off, _ := RequiredVars(build(false), false)
	on, _ := RequiredVars(build(true), false)

	if !reflect.DeepEqual(off.Vars, []string{"PLEX_TOKEN"}) {
		t.Fatalf("off.Vars = %v", off.Vars)
	}
	if !reflect.DeepEqual(on.Vars, []string{"PLEX_TOKEN", "JELLYFIN_TOKEN"}) {
		t.Fatalf("on.Vars = %v", on.Vars)
	}
}

func TestRequiredVarsInlineTokenSuppresses(t *testing.T) {
	root := map[string]any{
		"mediaServers": []any{
			server("a", "plex", true, map[string]any{
				"host": "h", "port": float64(1),
				"token": "inline-secret", "tokenEnvVar": "PLEX_TOKEN",
			}),
		},
	}
	req, _ := RequiredVars(root, false)
	if len(req.Vars) != 0 {
		t.Fatalf("inline token must suppress the requirement, got %v", req.Vars)
	}
}

func TestRequiredVarsConnectionIssuesDegrade(t *testing.T) {
	root := map[string]any{
		"mediaServers": []any{
			server("a", "plex", true, map[string]any{"tokenEnvVar": "PLEX_TOKEN"}),
			server("g", "romm", true, map[string]any{"token": "x"}),
		},
	}
	req, issues := RequiredVars(root, false)
	if !reflect.DeepEqual(req.Vars, []string{"PLEX_TOKEN"}) {
		t.Fatalf("Vars = %v", req.Vars)
	}

	want := map[string]bool{"a/host": true, "a/port": true, "g/url": true}
	if len(issues) != len(want) {
		t.Fatalf("issues = %v", issues)
	}
	for _, is := range issues {
		if !want[is.Server+"/"+is.Field] {
			t.Fatalf("unexpected issue %+v", is)
		}
	}
}

func TestRequiredVarsTMDB(t *testing.T) {
	root := map[string]any{
		"tmdb": map[string]any{"enabled": true, "apiKeyEnvVar": "TMDB_API_KEY"},
	}
	req, _ := RequiredVars(root, false)
	if !reflect.DeepEqual(req.Vars, []string{"TMDB_API_KEY"}) {
		t.Fatalf("Vars = %v", req.Vars)
	}

	root["tmdb"].(map[string]any)["apiKey"] = "inline"
	req, _ = RequiredVars(root, false)
	if len(req.Vars) != 0 {
		t.Fatalf("inline api key must suppress, got %v", req.Vars)
	}
}

func TestRequiredVarsSessionSecret(t *testing.T) {
	req, _ := RequiredVars(map[string]any{}, true)
	if !reflect.DeepEqual(req.Vars, []string{SessionSecretVar}) {
		t.Fatalf("Vars = %v", req.Vars)
	}
	if len(req.TokenVars) != 0 {
		t.Fatalf("session secret is not a token variable: %v", req.TokenVars)
	}

	req, _ = RequiredVars(map[string]any{}, false)
	if len(req.Vars) != 0 {
		t.Fatalf("no admin creds, no session secret, got %v", req.Vars)
	}
}

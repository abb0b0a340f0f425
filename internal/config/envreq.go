// internal/config/envreq.go
//
// Required-variable derivation.
//
// Context
// -------
// Which environment variables a deployment must set depends on the
// configuration's content: every enabled media server whose token is not
// inlined names the variable that must carry it, TMDB likewise for its API
// key, and the admin session secret is only needed when admin credentials
// are configured at all.  This file derives that set as a pure function of
// the document tree (plus an explicit admin-credentials flag), with no
// environment or filesystem access, so it is trivially unit-testable.
package config

// SessionSecretVar carries the admin session-signing secret.
const SessionSecretVar = "SESSION_SECRET"

// Requirement is the derived set of environment variables the current
// document mandates.  TokenVars is the subset that carries secrets.
type Requirement struct {
	Vars      []string
	TokenVars []string
}

// SourceIssue describes a non-fatal misconfiguration of one media source:
// the source is disabled at runtime instead of failing the boot.
type SourceIssue struct {
	Server string
	Field  string
}

// RequiredVars derives the Requirement from the document tree.
// adminCreds says whether both ADMIN_USERNAME and ADMIN_PASSWORD_HASH are
// present in the process environment; the caller passes it in so this
// function stays pure.
func RequiredVars(root map[string]any, adminCreds bool) (Requirement, []SourceIssue) {
	var req Requirement
	var issues []SourceIssue
	seen := map[string]bool{}

	addToken := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		req.Vars = append(req.Vars, name)
		req.TokenVars = append(req.TokenVars, name)
	}

	if servers, ok := root["mediaServers"].([]any); ok {
		for _, el := range servers {
			entry, ok := el.(map[string]any)
			if !ok {
				continue
			}
			if enabled, _ := entry["enabled"].(bool); !enabled {
				continue
			}
			name, _ := entry["name"].(string)
			kind, _ := entry["type"].(string)

			// Inline secret suppresses the env-var requirement.
			if token, _ := entry["token"].(string); token == "" {
				if v, _ := entry["tokenEnvVar"].(string); v != "" {
					addToken(v)
				}
			}

			// Connection coordinates: absence degrades, never fatal.
			switch kind {
			case "plex", "jellyfin":
				if s, _ := entry["host"].(string); s == "" {
					issues = append(issues, SourceIssue{Server: name, Field: "host"})
				}
				if !hasPort(entry["port"]) {
					issues = append(issues, SourceIssue{Server: name, Field: "port"})
				}
			case "romm":
				if s, _ := entry["url"].(string); s == "" {
					issues = append(issues, SourceIssue{Server: name, Field: "url"})
				}
			}
		}
	}

	if tmdb, ok := root["tmdb"].(map[string]any); ok {
		if enabled, _ := tmdb["enabled"].(bool); enabled {
			if key, _ := tmdb["apiKey"].(string); key == "" {
				if v, _ := tmdb["apiKeyEnvVar"].(string); v != "" {
					addToken(v)
				}
			}
		}
	}

	if adminCreds {
		if !seen[SessionSecretVar] {
			seen[SessionSecretVar] = true
			req.Vars = append(req.Vars, SessionSecretVar)
		}
	}

	return req, issues
}

func hasPort(v any) bool {
	switch n := v.(type) {
	case float64:
		return n > 0
	case int:
		return n > 0
	case string:
		return n != ""
	}
	return false
}

// internal/secrets/resolver.go
//
// Secret-reference resolution.
//
// Context
// -------
// Token fields in the configuration may hold the secret itself, or a
// reference that is expanded at boot:
//
//   - "env:NAME"                – read from the process environment,
//   - "vault:mount/path#key"    – read from HashiCorp Vault KV-v2,
//   - anything else             – used literally.
//
// Expansion happens in memory only; references are never rewritten into
// the user's file.  The Vault client is constructed lazily on the first
// vault: reference, so deployments without Vault never touch the SDK.
package secrets

import (
	"context"
	"fmt"
	"strings"
)

// Resolver expands secret references.  The zero value is not usable;
// construct with NewResolver.
type Resolver struct {
	getenv   func(string) string
	vault    *VaultClient
	newVault func() (*VaultClient, error)
}

// NewResolver builds a resolver.  getenv defaults to a function returning
// "" when nil, which makes env: references resolve to empty (and lets
// tests inject a fake environment).
func NewResolver(getenv func(string) string) *Resolver {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Resolver{getenv: getenv, newVault: NewVaultClient}
}

// Resolve expands one reference.  Empty input stays empty.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "env:"):
		return r.getenv(strings.TrimPrefix(ref, "env:")), nil
	case strings.HasPrefix(ref, "vault:"):
		return r.resolveVault(ctx, strings.TrimPrefix(ref, "vault:"))
	default:
		return ref, nil
	}
}

func (r *Resolver) resolveVault(ctx context.Context, spec string) (string, error) {
	path, key, ok := strings.Cut(spec, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q, want vault:mount/path#key", spec)
	}
	if r.vault == nil {
		cli, err := r.newVault()
		if err != nil {
			return "", fmt.Errorf("vault client: %w", err)
		}
		r.vault = cli
	}
	return r.vault.GetKV(ctx, path, key)
}

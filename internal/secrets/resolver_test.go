// internal/secrets/resolver_test.go
//
// Resolver tests for the non-network reference forms.  Vault-backed
// references are exercised with a stubbed client constructor.

package secrets

import (
	"context"
	"errors"
	"testing"
)

func TestResolveLiteralAndEmpty(t *testing.T) {
	r := NewResolver(nil)

	got, err := r.Resolve(context.Background(), "plain-token")
	if err != nil || got != "plain-token" {
		t.Fatalf("literal: %q, %v", got, err)
	}
	got, err = r.Resolve(context.Background(), "")
	if err != nil || got != "" {
		t.Fatalf("empty: %q, %v", got, err)
	}
}

func TestResolveEnvReference(t *testing.T) {
	r := NewResolver(func(k string) string {
		if k == "PLEX_TOKEN" {
			return "from-env"
		}
		return ""
	})

	got, err := r.Resolve(context.Background(), "env:PLEX_TOKEN")
	if err != nil || got != "from-env" {
		t.Fatalf("env ref: %q, %v", got, err)
	}
	got, err = r.Resolve(context.Background(), "env:UNSET")
	if err != nil || got != "" {
		t.Fatalf("unset env ref: %q, %v", got, err)
	}
}

func TestResolveVaultMalformed(t *testing.T) {
	r := NewResolver(nil)
	if _, err := r.Resolve(context.Background(), "vault:kv/mediawall"); err == nil {
		t.Fatalf("missing #key must error")
	}
	if _, err := r.Resolve(context.Background(), "vault:#key"); err == nil {
		t.Fatalf("missing path must error")
	}
}

func TestResolveVaultClientFailure(t *testing.T) {
	r := NewResolver(nil)
	r.newVault = func() (*VaultClient, error) {
		return nil, errors.New("no vault here")
	}
	if _, err := r.Resolve(context.Background(), "vault:kv/mediawall#plex"); err == nil {
		t.Fatalf("client construction failure must surface")
	}
}

func TestSplitMount(t *testing.T) {
	if m, rel := splitMount("kv/mediawall/plex"); m != "kv" || rel != "mediawall/plex" {
		t.Fatalf("splitMount = %q, %q", m, rel)
	}
	if m, rel := splitMount("kv"); m != "kv" || rel != "" {
		t.Fatalf("splitMount bare mount = %q, %q", m, rel)
	}
}

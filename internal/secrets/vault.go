// internal/secrets/vault.go
//
// HashiCorp Vault KV-v2 client.
//
// Context
// -------
// Wraps the Vault Go SDK for the one thing the resolver needs: read a
// single string key from a KV-v2 secret.  Values are cached per path#key
// for a short TTL so a configuration with many references to the same
// secret makes one network call.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR   – scheme and host of the Vault server.
//   - VAULT_TOKEN  – token (falls back to ~/.vault-token).
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// kvCacheTTL bounds staleness during one boot; the pipeline runs once, so
// this mostly de-duplicates lookups within a single run.
const kvCacheTTL = time.Minute

// VaultClient is safe for concurrent use.
type VaultClient struct {
	api *vault.Client

	mu    sync.Mutex
	cache map[string]kvEntry
}

type kvEntry struct {
	val string
	exp time.Time
}

// NewVaultClient constructs a client from the standard VAULT_* environment.
func NewVaultClient() (*VaultClient, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}
	return &VaultClient{api: api, cache: make(map[string]kvEntry)}, nil
}

// GetKV fetches one key from a KV-v2 secret at mount/path.
func (c *VaultClient) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	canonical := secretPath + "#" + key

	c.mu.Lock()
	if e, ok := c.cache[canonical]; ok && time.Now().Before(e.exp) {
		c.mu.Unlock()
		return e.val, nil
	}
	c.mu.Unlock()

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	c.mu.Lock()
	c.cache[canonical] = kvEntry{val: val, exp: time.Now().Add(kvCacheTTL)}
	c.mu.Unlock()
	return val, nil
}

// splitMount separates the KV mount from the secret's relative path.
func splitMount(p string) (mount, rel string) {
	mount, rel, ok := strings.Cut(p, "/")
	if !ok {
		return p, ""
	}
	return mount, rel
}

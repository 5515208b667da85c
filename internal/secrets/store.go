// Package secrets resolves package-index and private-registry credentials
// needed by the Dependency Installer, preferring the OS keyring and falling
// back to an encrypted KeePass vault file when no keyring is available
// (e.g. a headless CI runner).
package secrets

import "fmt"

// Store resolves a named credential ("index:https://pypi.example.com" or
// similar) to its secret value.
type Store interface {
	Get(name string) (string, error)
}

// Chain tries each Store in order, returning the first hit. This is the
// concrete mechanism behind §4.G's "credential lookup" step: primary OS
// keyring, fallback vault file, neither configured means the installer
// proceeds unauthenticated and lets the index return 401/403.
type Chain struct {
	stores []Store
}

// NewChain builds a credential chain trying keyring first, then vault (if
// vaultPath is non-empty).
func NewChain(vaultPath, vaultPassword string) *Chain {
	c := &Chain{stores: []Store{&keyringStore{}}}
	if vaultPath != "" {
		c.stores = append(c.stores, &vaultStore{path: vaultPath, password: vaultPassword})
	}
	return c
}

// Get returns the first store's value for name, or an error naming every
// store consulted if none has it.
func (c *Chain) Get(name string) (string, error) {
	var lastErr error
	for _, s := range c.stores {
		val, err := s.Get(name)
		if err == nil {
			return val, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("no configured credential store has %q: %w", name, lastErr)
}

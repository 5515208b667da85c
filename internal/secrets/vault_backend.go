package secrets

import (
	"fmt"
	"os"

	"github.com/tobischo/gokeepasslib/v3"
)

// vaultStore resolves credentials from a KeePass vault file, for hosts with
// no OS keyring (containers, headless CI runners). Entries are matched by
// title against the requested credential name.
type vaultStore struct {
	path     string
	password string
}

func (v *vaultStore) Get(name string) (string, error) {
	file, err := os.Open(v.path)
	if err != nil {
		return "", fmt.Errorf("opening vault %s: %w", v.path, err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(v.password)
	if err := gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return "", fmt.Errorf("decoding vault %s: %w", v.path, err)
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return "", fmt.Errorf("unlocking vault %s: %w", v.path, err)
	}

	for _, group := range db.Content.Root.Groups {
		if val, ok := findEntry(group, name); ok {
			return val, nil
		}
	}
	return "", fmt.Errorf("vault %s has no entry titled %q", v.path, name)
}

func findEntry(group gokeepasslib.Group, name string) (string, bool) {
	for _, entry := range group.Entries {
		if entry.GetTitle() == name {
			return entry.GetPassword(), true
		}
	}
	for _, sub := range group.Groups {
		if val, ok := findEntry(sub, name); ok {
			return val, true
		}
	}
	return "", false
}

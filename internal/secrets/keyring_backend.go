package secrets

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringServiceName is the fixed keyring service under which every DHT
// credential is stored, so a secret set once via the OS credential manager
// is found regardless of which project asks for it.
const keyringServiceName = "dht"

type keyringStore struct{}

func (k *keyringStore) Get(name string) (string, error) {
	val, err := keyring.Get(keyringServiceName, name)
	if err != nil {
		return "", fmt.Errorf("OS keyring: %w", err)
	}
	return val, nil
}

// Set stores a credential in the OS keyring under name, for "dht secrets
// set" to call directly; the installer itself only ever reads.
func Set(name, value string) error {
	if err := keyring.Set(keyringServiceName, name, value); err != nil {
		return fmt.Errorf("OS keyring: %w", err)
	}
	return nil
}

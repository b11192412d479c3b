// Package credentials manages the ordered list of generation API keys
// stored in credentials.toml under the .ragbench/ directory.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ragbenchco/ragbench/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// EnvVar is the environment variable holding comma-separated API keys.
const EnvVar = "RAGBENCH_API_KEYS"

// ErrNoKeys indicates no API keys could be resolved from any source.
var ErrNoKeys = errors.New("no API keys configured")

// Manager manages reading and writing credentials.toml in the .ragbench/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .ragbench/ directory; otherwise the standard dotdir resolution
// applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{Version: currentVersion}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// AddKey appends an API key to the stored rotation order.
func (m *Manager) AddKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cannot add empty key")
	}

	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Keys = append(creds.Keys, Key{APIKey: key})

	return m.Save(creds)
}

// Keys returns the stored API keys in rotation order.
func (m *Manager) Keys() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(creds.Keys))
	for _, k := range creds.Keys {
		keys = append(keys, k.APIKey)
	}

	return keys, nil
}

// RemoveKey deletes the stored key at the given rotation position.
func (m *Manager) RemoveKey(index int) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(creds.Keys) {
		return fmt.Errorf("no key at position %d", index)
	}

	creds.Keys = append(creds.Keys[:index], creds.Keys[index+1:]...)

	return m.Save(creds)
}

// Count returns the number of stored keys.
func (m *Manager) Count() (int, error) {
	creds, err := m.Load()
	if err != nil {
		return 0, err
	}

	return len(creds.Keys), nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// ResolveKeys returns the API keys to use for a run, in rotation order.
// Precedence: the explicit flag value, then the RAGBENCH_API_KEYS
// environment variable, then credentials.toml. Both the flag and the
// environment variable hold comma-separated keys.
func (m *Manager) ResolveKeys(flagValue string) ([]string, error) {
	if keys := splitKeys(flagValue); len(keys) > 0 {
		return keys, nil
	}

	if keys := splitKeys(os.Getenv(EnvVar)); len(keys) > 0 {
		return keys, nil
	}

	keys, err := m.Keys()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	return keys, nil
}

func splitKeys(value string) []string {
	var keys []string

	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}

	return keys
}

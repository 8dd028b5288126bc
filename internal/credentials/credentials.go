// Package credentials stores API keys in the OS keyring, or in 0600 files
// where no keyring is available.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "contractors"

	OpenAI = "openai"
	Bing   = "bing"
)

// ErrNotFound is returned when no key is stored for a provider.
var ErrNotFound = errors.New("credential not found")

// Providers lists the services a key can be stored for.
func Providers() []string {
	return []string{OpenAI, Bing}
}

// EnvVar returns the environment variable that overrides a stored key.
func EnvVar(provider string) string {
	switch provider {
	case OpenAI:
		return "OPENAI_API_KEY"
	case Bing:
		return "BING_SEARCH_V7_SUBSCRIPTION_KEY"
	default:
		return ""
	}
}

// Store reads and writes keys for known providers.
type Store struct {
	service  string
	dir      string
	fileOnly *bool
}

// NewStore creates a Store. An empty dir defaults to
// $XDG_CONFIG_HOME/contractors/credentials.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = filepath.Join(xdg.ConfigHome, "contractors", "credentials")
	}
	return &Store{service: KeyringService, dir: dir}
}

// NewFileStore creates a Store that never touches the keyring.
func NewFileStore(dir string) *Store {
	s := NewStore(dir)
	fileOnly := true
	s.fileOnly = &fileOnly
	return s
}

// useFiles probes the keyring once and falls back to files when it is
// unusable, as in Codespaces or CI.
func (s *Store) useFiles() bool {
	if s.fileOnly != nil {
		return *s.fileOnly
	}

	result := os.Getenv("CODESPACES") != "" || os.Getenv("CI") != ""
	if !result {
		probe := "_probe_keyring_access_"
		result = keyring.Set(s.service, probe, "probe") != nil
		if !result {
			_ = keyring.Delete(s.service, probe)
		}
	}
	s.fileOnly = &result
	return result
}

func (s *Store) path(provider string) (string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, provider+".key"), nil
}

func validate(provider string) error {
	for _, p := range Providers() {
		if p == provider {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q (expected one of %s)", provider, strings.Join(Providers(), ", "))
}

// Save stores key for provider.
func (s *Store) Save(provider, key string) error {
	if err := validate(provider); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if s.useFiles() {
		path, err := s.path(provider)
		if err != nil {
			return fmt.Errorf("failed to get credential path: %w", err)
		}
		if err := os.WriteFile(path, []byte(key), 0600); err != nil {
			return fmt.Errorf("failed to save credential file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(s.service, provider, key); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Load returns the stored key for provider, or ErrNotFound.
func (s *Store) Load(provider string) (string, error) {
	if err := validate(provider); err != nil {
		return "", err
	}

	if s.useFiles() {
		path, err := s.path(provider)
		if err != nil {
			return "", fmt.Errorf("failed to get credential path: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", ErrNotFound
			}
			return "", fmt.Errorf("failed to load credential file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	key, err := keyring.Get(s.service, provider)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load from keyring: %w", err)
	}
	return key, nil
}

// Delete removes the stored key for provider. Deleting a missing key is not an error.
func (s *Store) Delete(provider string) error {
	if err := validate(provider); err != nil {
		return err
	}

	if s.useFiles() {
		path, err := s.path(provider)
		if err != nil {
			return fmt.Errorf("failed to get credential path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete credential file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(s.service, provider); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// Stored lists the providers that currently have a key.
func (s *Store) Stored() []string {
	var out []string
	for _, p := range Providers() {
		if _, err := s.Load(p); err == nil {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve returns the key for provider, preferring its environment variable.
func (s *Store) Resolve(provider string) string {
	if v := os.Getenv(EnvVar(provider)); v != "" {
		return v
	}
	key, err := s.Load(provider)
	if err != nil {
		return ""
	}
	return key
}

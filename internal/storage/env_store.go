package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvStore manages the per-analysis env/.env file. The content is treated as
// an opaque KEY=value blob; encryption, if any, happens upstream. Parsed
// accessors are offered for callers that want structured access.
type EnvStore struct {
	layout Layout
}

// NewEnvStore builds an env store rooted at the storage directory.
func NewEnvStore(root string) *EnvStore {
	return &EnvStore{layout: Layout{Root: root}}
}

// Raw returns the env blob as stored. A missing file yields an empty string.
func (s *EnvStore) Raw(analysisID string) (string, error) {
	data, err := os.ReadFile(s.layout.EnvFile(analysisID))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("env store: read env: %w", err)
	}
	return string(data), nil
}

// WriteRaw replaces the env blob as-is.
func (s *EnvStore) WriteRaw(analysisID, blob string) error {
	if err := writeFileAtomic(s.layout.EnvFile(analysisID), []byte(blob)); err != nil {
		return fmt.Errorf("env store: write env: %w", err)
	}
	return nil
}

// Read parses the env blob into a key/value map. A missing file yields an
// empty map.
func (s *EnvStore) Read(analysisID string) (map[string]string, error) {
	blob, err := s.Raw(analysisID)
	if err != nil {
		return nil, err
	}
	if blob == "" {
		return map[string]string{}, nil
	}

	vars, err := godotenv.Unmarshal(blob)
	if err != nil {
		return nil, fmt.Errorf("env store: parse env: %w", err)
	}
	return vars, nil
}

// Write serialises vars in dotenv format, replacing the stored blob.
func (s *EnvStore) Write(analysisID string, vars map[string]string) error {
	blob, err := godotenv.Marshal(vars)
	if err != nil {
		return fmt.Errorf("env store: marshal env: %w", err)
	}
	return s.WriteRaw(analysisID, blob+"\n")
}

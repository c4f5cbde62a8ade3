package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentscout/screener/internal/interview"
)

const defaultDir = "candidates"

// Store persists candidate records as uniquely named JSON files.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates a store rooted at dir (default "candidates").
func New(dir string, log *zap.Logger) *Store {
	if strings.TrimSpace(dir) == "" {
		dir = defaultDir
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, logger: log}
}

// Save writes the candidate record to a fresh file named
// <uuid>_<slug>.json and returns its path. An existing file is never
// overwritten.
func (s *Store) Save(candidate *interview.Candidate) (string, error) {
	if candidate == nil {
		return "", errors.New("candidate is required")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create store directory %s: %w", s.dir, err)
	}

	filename := fmt.Sprintf("%s_%s.json", uuid.NewString(), Slugify(candidate.Name))
	path := filepath.Join(s.dir, filename)

	data, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode candidate record: %w", err)
	}

	// O_EXCL keeps the no-overwrite guarantee even on an id collision.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create record file %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write record file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close record file %s: %w", path, err)
	}

	s.logger.Debug("candidate record written", zap.String("path", path))
	return path, nil
}

// Load reads a previously saved record by filename.
func (s *Store) Load(filename string) (*interview.Candidate, error) {
	path := filepath.Join(s.dir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record file %s: %w", path, err)
	}

	var candidate interview.Candidate
	if err := json.Unmarshal(data, &candidate); err != nil {
		return nil, fmt.Errorf("decode record file %s: %w", path, err)
	}

	return &candidate, nil
}

// List returns the filenames of all saved records. A missing store
// directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Slugify turns a candidate name into a filesystem-safe filename fragment:
// lowercase, spaces as underscores, everything outside [a-z0-9._-] dropped.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "candidate"
	}
	return b.String()
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kukufarm/kukutrack/internal/domain/models"
)

// Store is the injected persistence capability for the session blob. It is
// the only state that must survive a process restart.
type Store interface {
	Load() (*models.Session, error)
	Save(sess models.Session) error
	Clear() error
}

// FileStore keeps the session blob in a single JSON file, the process
// equivalent of the browser's local storage entry.
type FileStore struct {
	path string
}

// NewFileStore builds a file-backed session store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted session. A missing or unreadable file yields no
// session rather than an error; a corrupted blob is discarded on sight.
func (s *FileStore) Load() (*models.Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		_ = os.Remove(s.path)
		return nil, nil
	}

	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session blob with owner-only permissions.
func (s *FileStore) Save(sess models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session if present.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

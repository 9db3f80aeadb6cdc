// Package session persists the CLI's signed-in session between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/ghostnote/internal/client/api"
	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/filex"
)

const fileName = "session.json"

// Store reads and writes the session file inside a private directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created lazily
// on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(dir string) string {
	return filepath.Join(dir, fileName)
}

// Load returns the saved session or common.ErrorNotFound if none exists.
func (s *Store) Load() (*api.Session, error) {
	b, err := os.ReadFile(s.path(s.dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess api.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Token == "" {
		return nil, common.ErrorNotFound
	}
	return &sess, nil
}

// Save writes sess with owner-only permissions.
func (s *Store) Save(sess *api.Session) error {
	dir, err := filex.EnsureSubdDir(s.dir)
	if err != nil {
		return err
	}

	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return filex.WriteFileAtomic(s.path(dir), b, 0o600)
}

// Clear removes the saved session. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path(s.dir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

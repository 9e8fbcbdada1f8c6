package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists one marker per node as a "<name>.chkp" file under a
// root directory.
//
// Writes are write-temp-then-rename so a crash mid-write never leaves a
// partially-written marker visible to a future Load; a temp file left
// behind by a crash is simply orphaned and ignored. A file that fails to
// parse (after trimming whitespace it is still empty) is treated the
// same as a missing file: absent, not an error.
type FileStore struct {
	Root string
}

// NewFileStore returns a FileStore rooted at dir. dir is created lazily
// on first Store call, not here.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Root, name+".chkp")
}

// Load implements Store.
func (s *FileStore) Load(name string) (string, bool, error) {
	p := s.path(name)

	data, err := os.ReadFile(p)
	if err != nil {
		return "", false, nil //nolint:nilerr // missing/partial checkpoint is benign, see doc comment
	}

	marker := strings.TrimSpace(string(data))
	_ = os.Remove(p) // one-shot handoff: the file is consumed on read

	if marker == "" {
		return "", false, nil
	}
	return marker, true, nil
}

// Store implements Store.
func (s *FileStore) Store(name string, marker string) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	dst := s.path(name)
	tmp, err := os.CreateTemp(s.Root, name+".chkp.tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(marker); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// recordExt is the extension of file-backed cache records.
const recordExt = ".json"

// fileStore keeps one <key>.json record per entry in a flat directory.
type fileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileCache opens a file-backed cache rooted at dir, creating it if
// needed. Pass afero.NewOsFs() outside of tests.
func NewFileCache(fs afero.Fs, dir string, logger *zap.Logger) (*Cache, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return newCache(&fileStore{fs: fs, dir: dir}, logger), nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, key+recordExt)
}

func (s *fileStore) get(key string) ([]byte, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

func (s *fileStore) put(key string, data []byte) error {
	return afero.WriteFile(s.fs, s.path(key), data, 0o644)
}

func (s *fileStore) delete(key string) error {
	err := s.fs.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

func (s *fileStore) scan(visit func(key string, data []byte, size int64)) error {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		key := strings.TrimSuffix(entry.Name(), recordExt)

		data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, entry.Name()))
		if err != nil {
			visit(key, nil, entry.Size())
			continue
		}

		visit(key, data, entry.Size())
	}

	return nil
}

func (s *fileStore) clear() (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		if s.fs.Remove(filepath.Join(s.dir, entry.Name())) == nil {
			count++
		}
	}

	return count, nil
}

func (s *fileStore) close() error {
	return nil
}

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/config"
	"github.com/matzehuels/brickyard/pkg/errors"
)

// FileStore keeps one JSON document per build in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

type fileRecord struct {
	Name      string          `json:"name"`
	Digest    string          `json:"digest"`
	UpdatedAt time.Time       `json:"updated_at"`
	Pieces    json.RawMessage `json:"pieces"`
}

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, defaults to $XDG_DATA_HOME/brickyard/builds.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		baseDir = filepath.Join(config.DataDir(), "builds")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, storageErr(err, "create build dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) buildPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Get(ctx context.Context, name string) (*Entry, error) {
	if err := errors.ValidateBuildName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.buildPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storageErr(err, "read build %s", name)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuild, err, "stored build %s is corrupt", name)
	}
	return decodeEntry(name, rec.Pieces, rec.UpdatedAt)
}

func (s *FileStore) Put(ctx context.Context, name string, pieces build.Pieces) (*Entry, error) {
	e, payload, err := encodeEntry(name, pieces, time.Now())
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(fileRecord{
		Name:      e.Name,
		Digest:    e.Digest,
		UpdatedAt: e.UpdatedAt,
		Pieces:    payload,
	}, "", "  ")
	if err != nil {
		return nil, storageErr(err, "marshal build %s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Readers never observe a partially written file.
	tmp := s.buildPath(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, storageErr(err, "write build %s", name)
	}
	if err := os.Rename(tmp, s.buildPath(name)); err != nil {
		os.Remove(tmp)
		return nil, storageErr(err, "write build %s", name)
	}
	return e, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateBuildName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.buildPath(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return storageErr(err, "remove build %s", name)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, storageErr(err, "read build dir")
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var rec struct {
			fileRecord
			Pieces []json.RawMessage `json:"pieces"`
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:      strings.TrimSuffix(entry.Name(), ".json"),
			Count:     len(rec.Pieces),
			Digest:    rec.Digest,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding build files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) String() string {
	return fmt.Sprintf("file:%s", s.baseDir)
}

var _ Store = (*FileStore)(nil)

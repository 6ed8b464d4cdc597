package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const metaExt = ".json"

// fsStore keeps one JSON document per object id in a flat directory.
// Directory enumeration is the object index; adequate at the expected
// scale and swappable for the postgres store without touching the engine.
type fsStore struct {
	dir string
}

// NewFSStore creates a filesystem-backed metadata store rooted at dir.
func NewFSStore(dir string) (MetadataStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating metadata directory: %w", err)
	}
	return &fsStore{dir: dir}, nil
}

func (s *fsStore) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+metaExt)
}

func (s *fsStore) Load(ctx context.Context, id string) (*Object, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading record: %w", err)
	}

	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &obj, nil
}

// Save writes the record to a temp file in the same directory and renames
// it over the final path. Rename is atomic on POSIX filesystems, so a
// concurrent Load sees either the old or the new record, never a torn one.
func (s *fsStore) Save(ctx context.Context, obj *Object) error {
	if obj.ID == "" {
		return errors.New("record has no id")
	}

	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if err := os.Rename(tmp, s.path(obj.ID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("committing record: %w", err)
	}
	return nil
}

func (s *fsStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading metadata directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, metaExt) || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, metaExt))
	}
	return ids, nil
}

func (s *fsStore) Close() error {
	return nil
}

package embeddingstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// index is an immutable snapshot of the store's contents. Swapped wholesale
// through an atomic pointer so readers never see a half-built state.
type index struct {
	// names is the listing order: sentinel first, rest alphabetical.
	names []string
	// locations maps a name to its backing file path or object key.
	locations map[string]string
}

func buildIndex(entries map[string]string) *index {
	names := make([]string, 0, len(entries)+1)
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return &index{
		names:     append([]string{SentinelNone}, names...),
		locations: entries,
	}
}

// FSStore keeps embeddings as <name>.emb files in a local directory.
type FSStore struct {
	dir string
	log *logger.LoggerClient

	idx atomic.Pointer[index]
}

// NewFSStore creates the directory if needed and performs an initial scan.
func NewFSStore(cfg Config, log *logger.LoggerClient) (*FSStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("embeddingstore: missing embeddings directory")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("embeddingstore: creating %s: %w", cfg.Dir, err)
	}
	s := &FSStore{dir: cfg.Dir, log: log}
	if err := s.Refresh(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Names implements Store.
func (s *FSStore) Names() []string {
	return s.idx.Load().names
}

// Resolve implements Store.
func (s *FSStore) Resolve(ctx context.Context, name string) (vecmath.Vector, error) {
	location, ok := s.idx.Load().locations[name]
	if !ok {
		return nil, fmt.Errorf("embeddingstore: %q: %w", name, ErrNotFound)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("embeddingstore: %q removed externally: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("embeddingstore: reading %q: %w", name, err)
	}
	vec, err := DecodeVector(data)
	if err != nil {
		return nil, fmt.Errorf("embeddingstore: %q: %w", name, err)
	}
	return vec, nil
}

// Register implements Store. The write goes to a temp file first and is
// renamed into place, so a concurrent Resolve never reads a torn file.
func (s *FSStore) Register(ctx context.Context, name string, vec vecmath.Vector) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if len(vec) == 0 {
		return "", fmt.Errorf("embeddingstore: empty vector for %q: %w", name, ErrCorruptVector)
	}

	path := filepath.Join(s.dir, name+Extension)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("embeddingstore: writing %q: %w", name, err)
	}
	if _, err := tmp.Write(EncodeVector(vec)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("embeddingstore: writing %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("embeddingstore: writing %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("embeddingstore: writing %q: %w", name, err)
	}

	if err := s.Refresh(ctx); err != nil {
		return "", err
	}
	s.log.Debug("embedding registered", nil, map[string]interface{}{
		"name": name,
		"path": path,
		"dim":  len(vec),
	})
	return path, nil
}

// Refresh implements Store.
func (s *FSStore) Refresh(ctx context.Context) error {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("embeddingstore: scanning %s: %w", s.dir, err)
	}
	entries := make(map[string]string)
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), Extension)
		entries[name] = filepath.Join(s.dir, e.Name())
	}
	s.idx.Store(buildIndex(entries))
	return nil
}

var _ Store = (*FSStore)(nil)

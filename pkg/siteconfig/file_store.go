package siteconfig

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const (
	// maxRegistryFileSize is the maximum allowed sites file size (1 MiB).
	maxRegistryFileSize = 1 << 20

	// maxRevisionHistory is the number of revision snapshots to keep.
	maxRevisionHistory = 20

	// historyDirName holds revision snapshots next to the sites file.
	historyDirName = ".history"

	// watchDebounce coalesces bursts of filesystem events from editors
	// that write via temp file + rename.
	watchDebounce = 200 * time.Millisecond
)

// ErrFileTooLarge is returned when the sites file exceeds maxRegistryFileSize.
var ErrFileTooLarge = errors.New("sites file exceeds maximum allowed size (1 MiB)")

// ErrPathTraversal is returned when the sites file path contains path traversal.
var ErrPathTraversal = errors.New("sites file path contains path traversal")

// FileStore implements Store backed by a YAML file on disk. It uses
// SHA-256 content hashing for optimistic concurrency control and atomic
// writes (write-to-temp + rename) to avoid partial writes.
type FileStore struct {
	path    string
	mu      sync.Mutex
	version string // cached SHA-256 hex digest of file content
}

// NewFileStore creates a FileStore for the given sites file path. The
// file does not need to exist yet; Load reports an error while it is
// missing. Rejects paths containing traversal sequences.
func NewFileStore(path string) (*FileStore, error) {
	cleaned := filepath.Clean(path)
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return nil, ErrPathTraversal
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the sites file path managed by this store.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the sites file, parses it, and returns the registry with a
// version string (SHA-256 hex digest of the raw file bytes).
func (s *FileStore) Load(_ context.Context) (*Registry, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("site store: failed to read %s: %w", s.path, err)
	}
	if int64(len(data)) > maxRegistryFileSize {
		return nil, "", fmt.Errorf("site store: %s: %w", s.path, ErrFileTooLarge)
	}

	version := hashBytes(data)
	s.version = version

	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, "", fmt.Errorf("site store: failed to parse %s: %w", s.path, err)
	}
	return reg, version, nil
}

// Save marshals the registry to YAML and writes it atomically. The
// provided version must match the current file hash; otherwise
// ErrVersionConflict is returned. Before writing, the current file is
// snapshotted to .history/ for rollback.
func (s *FileStore) Save(_ context.Context, reg *Registry, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentData, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("site store: failed to read current file for version check: %w", err)
	}

	if err == nil {
		if hashBytes(currentData) != version {
			return "", ErrVersionConflict
		}
	} else if version != "" {
		// A non-empty version against a missing file is stale too.
		return "", ErrVersionConflict
	}

	data, err := yaml.Marshal(reg)
	if err != nil {
		return "", fmt.Errorf("site store: failed to marshal registry: %w", err)
	}
	if int64(len(data)) > maxRegistryFileSize {
		return "", fmt.Errorf("site store: marshaled registry: %w", ErrFileTooLarge)
	}

	if len(currentData) > 0 {
		// History is best-effort; a failed snapshot never blocks the save.
		_ = s.snapshotCurrent(currentData, hashBytes(currentData))
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".sites-*.yaml.tmp")
	if err != nil {
		return "", fmt.Errorf("site store: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("site store: failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("site store: failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("site store: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return "", fmt.Errorf("site store: failed to rename temp file: %w", err)
	}
	tmpName = ""

	newVersion := hashBytes(data)
	s.version = newVersion

	_ = s.pruneHistory()

	return newVersion, nil
}

// Watch emits a ChangeEvent whenever the sites file content changes on
// disk. Events are debounced and deduplicated by content hash, so a save
// through this store followed by the matching notification produces no
// spurious event. The channel closes when ctx is cancelled.
func (s *FileStore) Watch(ctx context.Context) (<-chan ChangeEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("site store: failed to create watcher: %w", err)
	}
	// Watch the directory: editors and our own Save replace the file by
	// rename, which drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("site store: failed to watch %s: %w", filepath.Dir(s.path), err)
	}

	events := make(chan ChangeEvent, 1)
	go s.watchLoop(ctx, watcher, events)
	return events, nil
}

func (s *FileStore) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, events chan<- ChangeEvent) {
	defer close(events)
	defer watcher.Close()

	var debounce *time.Timer
	var pending <-chan time.Time

	emit := func() {
		pending = nil
		data, err := os.ReadFile(s.path)
		if err != nil {
			select {
			case events <- ChangeEvent{Error: err}:
			case <-ctx.Done():
			}
			return
		}
		version := hashBytes(data)
		s.mu.Lock()
		changed := version != s.version
		if changed {
			s.version = version
		}
		s.mu.Unlock()
		if !changed {
			return
		}
		select {
		case events <- ChangeEvent{Version: version}:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(s.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			pending = debounce.C
		case <-pending:
			emit()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("site store watcher error", "path", s.path, "error", err)
		}
	}
}

func (s *FileStore) historyDir() string {
	return filepath.Join(filepath.Dir(s.path), historyDirName)
}

// snapshotCurrent copies the current file to .history/{timestamp}_{version_short}.yaml.
// Must be called with s.mu held.
func (s *FileStore) snapshotCurrent(data []byte, version string) error {
	histDir := s.historyDir()
	if err := os.MkdirAll(histDir, 0o755); err != nil {
		return fmt.Errorf("site store: failed to create history dir: %w", err)
	}

	versionShort := version
	if len(versionShort) > 8 {
		versionShort = versionShort[:8]
	}
	histPath := filepath.Join(histDir, fmt.Sprintf("%d_%s.yaml", time.Now().Unix(), versionShort))
	if err := os.WriteFile(histPath, data, 0o644); err != nil {
		return fmt.Errorf("site store: failed to write history snapshot: %w", err)
	}
	return nil
}

// pruneHistory removes old revision files, keeping the most recent
// maxRevisionHistory. Must be called with s.mu held.
func (s *FileStore) pruneHistory() error {
	entries, err := os.ReadDir(s.historyDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var yamlFiles []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			yamlFiles = append(yamlFiles, e)
		}
	}
	if len(yamlFiles) <= maxRevisionHistory {
		return nil
	}

	// Names start with a unix timestamp, so lexicographic order is age order.
	sort.Slice(yamlFiles, func(i, j int) bool {
		return yamlFiles[i].Name() < yamlFiles[j].Name()
	})
	for i := 0; i < len(yamlFiles)-maxRevisionHistory; i++ {
		_ = os.Remove(filepath.Join(s.historyDir(), yamlFiles[i].Name()))
	}
	return nil
}

// ParseRegistry decodes YAML registry bytes, rejecting unknown fields
// so typos in sites files fail loudly instead of silently dropping
// configuration.
func ParseRegistry(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var reg Registry
	if err := dec.Decode(&reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// hashBytes returns the SHA-256 hex digest of the given byte slice.
func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

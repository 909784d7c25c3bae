// Package records edits rows inside the embedded per-file databases a
// site declares as relational files. Every call resolves the file,
// table, and column access configuration before touching the database.
//
// The store keeps exactly one open connection per (site id, file path)
// and pins it to a single underlying conn, matching the exclusive-lock
// behavior of file-backed sqlite. CloseConnection or CloseAll must be
// called on configuration changes and shutdown to release the lock.
package records

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/billstark001/fiction-cms-sub001/pkg/access"
	"github.com/billstark001/fiction-cms-sub001/pkg/cmserr"
	"github.com/billstark001/fiction-cms-sub001/pkg/metrics"
	"github.com/billstark001/fiction-cms-sub001/pkg/siteconfig"
)

// Store caches one database connection per (site id, relational file).
// Safe for concurrent use; operations on the same file serialize.
type Store struct {
	mu      sync.Mutex
	conns   map[connKey]*conn
	logger  *slog.Logger
	metrics *metrics.CMSMetrics
}

type connKey struct {
	siteID string
	path   string
}

type conn struct {
	mu sync.Mutex
	db *gorm.DB
}

// NewStore creates a Store. logger and m may be nil.
func NewStore(logger *slog.Logger, m *metrics.CMSMetrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		conns:   make(map[connKey]*conn),
		logger:  logger,
		metrics: m,
	}
}

// connFor returns the cached connection for the site's relational file,
// opening it on first use. The file must already exist: opening a
// missing path would silently create an empty database instead of
// surfacing the configuration problem.
func (s *Store) connFor(cfg *siteconfig.SiteConfig, relPath string) (*conn, error) {
	key := connKey{siteID: cfg.ID, path: access.NormalizeRelPath(relPath)}

	s.mu.Lock()
	if c, ok := s.conns[key]; ok {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	abs, err := access.ResolveWithin(cfg.LocalPath, key.path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, cmserr.New(cmserr.CodeNotFound, "open_database", key.path)
		}
		return nil, cmserr.Wrap(cmserr.CodeInternal, "open_database", key.path, err)
	}

	db, err := gorm.Open(sqlite.Open(abs), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "open_database", key.path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "open_database", key.path, err)
	}
	// One conn keeps sqlite's file lock stable and makes
	// last_insert_rowid() trustworthy across a create.
	sqlDB.SetMaxOpenConns(1)

	c := &conn{db: db}
	s.mu.Lock()
	if existing, ok := s.conns[key]; ok {
		s.mu.Unlock()
		_ = sqlDB.Close()
		return existing, nil
	}
	s.conns[key] = c
	s.mu.Unlock()

	s.logger.Debug("opened relational store", "site", cfg.ID, "path", key.path)
	return c, nil
}

// CloseConnection releases the connection for one relational file. A
// missing connection is a no-op.
func (s *Store) CloseConnection(siteID, relPath string) error {
	key := connKey{siteID: siteID, path: access.NormalizeRelPath(relPath)}

	s.mu.Lock()
	c, ok := s.conns[key]
	if ok {
		delete(s.conns, key)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return closeGorm(c.db, key.path)
}

// CloseSite releases every connection belonging to one site. Must be
// called when a site is deleted or its configuration changes.
func (s *Store) CloseSite(siteID string) error {
	s.mu.Lock()
	var victims []connKey
	for key := range s.conns {
		if key.siteID == siteID {
			victims = append(victims, key)
		}
	}
	conns := make([]*conn, 0, len(victims))
	for _, key := range victims {
		conns = append(conns, s.conns[key])
		delete(s.conns, key)
	}
	s.mu.Unlock()

	var firstErr error
	for i, c := range conns {
		c.mu.Lock()
		if err := closeGorm(c.db, victims[i].path); err != nil && firstErr == nil {
			firstErr = err
		}
		c.mu.Unlock()
	}
	return firstErr
}

// CloseAll releases every cached connection. Called on shutdown.
func (s *Store) CloseAll() error {
	s.mu.Lock()
	conns := s.conns
	s.conns = make(map[connKey]*conn)
	s.mu.Unlock()

	var firstErr error
	for key, c := range conns {
		c.mu.Lock()
		if err := closeGorm(c.db, key.path); err != nil && firstErr == nil {
			firstErr = err
		}
		c.mu.Unlock()
	}
	return firstErr
}

func closeGorm(db *gorm.DB, path string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

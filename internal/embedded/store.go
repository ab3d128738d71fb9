// Package embedded is the single-process backend of the storefront store.
//
// The database lives in memory on one SQLite connection. After every
// committed write the whole database image is serialized, base64 encoded and
// written to a blob store under a fixed key; on startup the image is read
// back. Writers hold an exclusive lock for the transaction and the
// persistence step, so the blob always holds the last committed state.
package embedded

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/nikolayk812/storefront/internal/blob"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultKey is the blob key the database image is stored under.
const DefaultKey = "ai_store_sqlite_v2.db"

const dsn = "file::memory:?_foreign_keys=on"

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB

	blobs   blob.Store
	key     string
	initial []domain.Product
	log     *slog.Logger
	persist func(image []byte)

	mu sync.RWMutex
	// last image successfully written to blobs
	image []byte
}

var (
	_ port.Store             = (*Store)(nil)
	_ port.SessionRepository = (*Store)(nil)
)

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithInitialProducts seeds a freshly created database. It has no effect when
// an image is loaded from the blob store.
func WithInitialProducts(products []domain.Product) Option {
	return func(s *Store) {
		s.initial = products
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithPersistHook is called with every image after it was written to the blob store.
func WithPersistHook(fn func(image []byte)) Option {
	return func(s *Store) {
		s.persist = fn
	}
}

// Open loads the database image stored under the configured key, or creates
// a fresh database when there is none. A stored image that cannot be decoded
// fails with domain.ErrCorruptSnapshot and nothing of it is imported.
func Open(ctx context.Context, blobs blob.Store, opts ...Option) (*Store, error) {
	s := &Store{
		blobs: blobs,
		key:   DefaultKey,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("gdb.DB: %w", err)
	}

	// the in-memory database dies with its connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	s.db = gdb
	s.sqlDB = sqlDB

	fresh, err := s.load(ctx)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	err = s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec(schemaSQL).Error; err != nil {
			return fmt.Errorf("tx.Exec schema: %w", err)
		}
		if fresh {
			for _, product := range s.initial {
				if err := upsertProduct(tx, product); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	s.log.Info("embedded store opened", "key", s.key, "fresh", fresh, "bytes", len(s.image))

	return s, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec(schemaSQL).Error; err != nil {
			return fmt.Errorf("tx.Exec schema: %w", err)
		}
		return nil
	})
}

// Close releases the database and the blob store when it holds resources
// of its own.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if err := s.sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sqlDB.Close: %w", err))
	}
	if closer, ok := s.blobs.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("blobs.Close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// load imports the stored image. It reports true when there was none.
func (s *Store) load(ctx context.Context) (bool, error) {
	encoded, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("blobs.Get: %w", err)
	}

	image, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return false, fmt.Errorf("%w: base64: %w", domain.ErrCorruptSnapshot, err)
	}

	if err := s.deserialize(ctx, image); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrCorruptSnapshot, err)
	}

	var result string
	if err := s.db.WithContext(ctx).Raw("PRAGMA quick_check").Scan(&result).Error; err != nil {
		return false, fmt.Errorf("%w: quick_check: %w", domain.ErrCorruptSnapshot, err)
	}
	if result != "ok" {
		return false, fmt.Errorf("%w: quick_check: %s", domain.ErrCorruptSnapshot, result)
	}

	s.image = image

	return false, nil
}

// write runs fn in a transaction and persists the database once it commits.
// If persisting fails the database is rolled back to the last stored image.
func (s *Store) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}

	if err := s.persistLocked(ctx); err != nil {
		restoreErr := s.restoreLocked(context.WithoutCancel(ctx))
		if restoreErr != nil {
			s.log.Error("restore after failed persist", "key", s.key, "error", restoreErr)
			return errors.Join(err, restoreErr)
		}
		return err
	}

	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	start := time.Now()

	image, err := s.serialize(ctx)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	if err := s.blobs.Put(ctx, s.key, []byte(encoded)); err != nil {
		return fmt.Errorf("blobs.Put: %w", err)
	}

	s.image = image
	if s.persist != nil {
		s.persist(image)
	}

	s.log.Debug("embedded store persisted", "key", s.key, "bytes", len(image), "took", time.Since(start))

	return nil
}

func (s *Store) restoreLocked(ctx context.Context) error {
	// nothing durable yet: Open fails and discards the database
	if s.image == nil {
		return nil
	}

	if err := s.deserialize(ctx, s.image); err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}
	return nil
}

func (s *Store) serialize(ctx context.Context) ([]byte, error) {
	var image []byte

	err := s.raw(ctx, func(conn *sqlite3.SQLiteConn) error {
		var err error
		image, err = conn.Serialize("main")
		if err != nil {
			return fmt.Errorf("conn.Serialize: %w", err)
		}
		return nil
	})

	return image, err
}

// deserialize replaces the main database with image. A deserialized database
// cannot grow past the image size, so the image is opened on a scratch
// connection and copied page by page into the main one.
func (s *Store) deserialize(ctx context.Context, image []byte) error {
	driverConn, err := (&sqlite3.SQLiteDriver{}).Open(":memory:")
	if err != nil {
		return fmt.Errorf("driver.Open scratch: %w", err)
	}
	scratch, ok := driverConn.(*sqlite3.SQLiteConn)
	if !ok {
		_ = driverConn.Close()
		return fmt.Errorf("unexpected driver connection %T", driverConn)
	}
	defer scratch.Close()

	if err := scratch.Deserialize(image, "main"); err != nil {
		return fmt.Errorf("scratch.Deserialize: %w", err)
	}

	return s.raw(ctx, func(conn *sqlite3.SQLiteConn) error {
		backup, err := conn.Backup("main", scratch, "main")
		if err != nil {
			return fmt.Errorf("conn.Backup: %w", err)
		}

		done, err := backup.Step(-1)
		if err != nil {
			_ = backup.Finish()
			return fmt.Errorf("backup.Step: %w", err)
		}
		if err := backup.Finish(); err != nil {
			return fmt.Errorf("backup.Finish: %w", err)
		}
		if !done {
			return errors.New("backup.Step: copy incomplete")
		}
		return nil
	})
}

func (s *Store) raw(ctx context.Context, fn func(conn *sqlite3.SQLiteConn) error) error {
	conn, err := s.sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("sqlDB.Conn: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		sqliteConn, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		return fn(sqliteConn)
	})
}

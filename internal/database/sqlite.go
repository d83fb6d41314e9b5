package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"cv-go/internal/cv"
	"cv-go/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const recordColumns = "key, type, body, created_at, updated_at"

var errClosed = errors.New("store closed")

// SQLiteStore implements cv.Store on a single SQLite table.
//
// The handle is opened on first use, at most once. If opening fails the
// failure is kept and every later call reports cv.ErrStorageUnavailable; there
// is no retry.
type SQLiteStore struct {
	path   string
	logger cv.Logger

	once    sync.Once
	db      *sql.DB
	openErr error
}

// NewSQLiteStore returns a store for the database at path. path can be a file
// path or ":memory:". Nothing is opened until the first call.
func NewSQLiteStore(path string, logger cv.Logger) *SQLiteStore {
	if logger == nil {
		logger = cv.NopLogger{}
	}
	return &SQLiteStore{path: path, logger: logger}
}

// OpenConnection opens and configures a SQLite connection pool limited to a
// single connection, so ":memory:" databases are shared by every query.
func OpenConnection(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) handle(ctx context.Context) (*sql.DB, error) {
	s.once.Do(func() {
		db, err := OpenConnection(ctx, s.path)
		if err == nil {
			if err = migrations.MigrateUp(db); err != nil {
				db.Close()
			}
		}
		if err != nil {
			s.openErr = err
			s.logger.Error("record store unavailable", "path", s.path, "error", err)
			return
		}
		s.db = db
		s.logger.Debug("record store opened", "path", s.path)
	})
	if s.openErr != nil {
		return nil, fmt.Errorf("%w: %v", cv.ErrStorageUnavailable, s.openErr)
	}
	return s.db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*cv.Record, error) {
	var (
		rec  cv.Record
		body string
	)
	if err := row.Scan(&rec.Key, &rec.Type, &body, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Body = []byte(body)
	return &rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*cv.Record, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE key = ?", key)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return rec, nil
}

const upsertRecord = `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	type = excluded.type,
	body = excluded.body,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putRecord(ctx context.Context, ex execer, rec *cv.Record) error {
	_, err := ex.ExecContext(ctx, upsertRecord, rec.Key, rec.Type, string(rec.Body), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("writing %s: %w", rec.Key, err)
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec *cv.Record) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	return putRecord(ctx, db, rec)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetAll(ctx context.Context) ([]*cv.Record, error) {
	return s.query(ctx, "SELECT "+recordColumns+" FROM records ORDER BY key")
}

func (s *SQLiteStore) GetAllKeys(ctx context.Context) ([]string, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT key FROM records ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("listing keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) ListByType(ctx context.Context, typ string) ([]*cv.Record, error) {
	return s.query(ctx, "SELECT "+recordColumns+" FROM records WHERE type = ? ORDER BY key", typ)
}

// ListByKeyPrefix runs as a range scan over the primary key.
func (s *SQLiteStore) ListByKeyPrefix(ctx context.Context, prefix string) ([]*cv.Record, error) {
	return s.query(ctx,
		"SELECT "+recordColumns+" FROM records WHERE key >= ? AND key < ? ORDER BY key",
		prefix, prefix+"\xff")
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]*cv.Record, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var recs []*cv.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	return recs, nil
}

// Replace clears the table and writes recs in one transaction. Later records
// win over earlier ones with the same key.
func (s *SQLiteStore) Replace(ctx context.Context, recs []*cv.Record) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	for _, rec := range recs {
		if err := putRecord(ctx, tx, rec); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string {
	return s.path
}

// SchemaStatus reports the applied and latest schema versions.
func (s *SQLiteStore) SchemaStatus(ctx context.Context) (migrations.Status, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return migrations.Status{}, err
	}
	return migrations.ReadStatus(db)
}

// BackupTo writes a complete copy of the database to destPath using VACUUM INTO.
func (s *SQLiteStore) BackupTo(ctx context.Context, destPath string) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close releases the handle. A store that was never opened stays unusable
// after Close.
func (s *SQLiteStore) Close() error {
	s.once.Do(func() { s.openErr = errClosed })
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ cv.Store = (*SQLiteStore)(nil)

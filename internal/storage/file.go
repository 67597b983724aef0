package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"curator/internal/asset"
	"curator/internal/logging"
	"curator/internal/media"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current store schema version. Bump this when the
// schema changes; stores with another version refuse to open.
const schemaVersion = 1

const databaseName = "assets.db"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// FileStore persists assets in a SQLite database under a directory.
// Identifiers come from the AUTOINCREMENT rowid sequence, so they stay
// monotonic across reopen and are never handed out twice.
type FileStore struct {
	db     *sql.DB
	dir    string
	logger *slog.Logger
}

var _ Storage = (*FileStore)(nil)

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger routes store diagnostics to the supplied logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logging.WithComponent(logger, "storage")
		}
	}
}

// Open initializes or connects to the asset store under dir. The directory
// is created when missing; a path that exists as a regular file is refused.
func Open(dir string, opts ...Option) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, media.Wrap(media.ErrValidation, "storage", "open", "directory is empty", nil)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return nil, media.Wrap(media.ErrStorage, "storage", "open",
			fmt.Sprintf("%s exists and is not a directory", dir), nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "open", "create directory", err)
	}

	dbPath := filepath.Join(dir, databaseName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, media.Wrap(media.ErrStorage, "storage", "open",
				fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &FileStore{db: db, dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	store.logger.Debug("store opened", logging.FieldPath, dbPath)
	return store, nil
}

// Dir returns the directory the store lives in.
func (s *FileStore) Dir() string {
	return s.dir
}

// Close closes the underlying database connection.
func (s *FileStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *FileStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return media.Wrap(media.ErrStorage, "storage", "open", "check schema_version table", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return media.Wrap(media.ErrStorage, "storage", "open", "read schema version", err)
	}
	if version != schemaVersion {
		return media.Wrap(media.ErrStorage, "storage", "open",
			fmt.Sprintf("store has schema version %d, expected %d (delete %s to rebuild)",
				version, schemaVersion, databaseName), nil)
	}
	return nil
}

func (s *FileStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return media.Wrap(media.ErrStorage, "storage", "open", "begin schema tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return media.Wrap(media.ErrStorage, "storage", "open", "create schema", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return media.Wrap(media.ErrStorage, "storage", "open", "record schema version", err)
	}
	if err := tx.Commit(); err != nil {
		return media.Wrap(media.ErrStorage, "storage", "open", "commit schema", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *FileStore) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Add stores the asset and returns its identifier, the decimal form of the
// new row id.
func (s *FileStore) Add(ctx context.Context, a *asset.Asset) (string, error) {
	if a == nil {
		return "", media.Wrap(media.ErrValidation, "storage", "add", "asset is nil", nil)
	}
	payload, err := encodeAsset(a)
	if err != nil {
		return "", err
	}
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		"INSERT INTO assets (mime_type, created_at, payload) VALUES (?, ?, ?)",
		a.MIMEType(), createdAt, payload)
	if err != nil {
		return "", media.Wrap(media.ErrStorage, "storage", "add", "insert asset", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return "", media.Wrap(media.ErrStorage, "storage", "add", "last insert id", err)
	}
	id := strconv.FormatInt(rowID, 10)
	s.logger.Debug("asset stored",
		logging.FieldAssetID, id,
		logging.FieldMIMEType, a.MIMEType(),
		"size", a.Size())
	return id, nil
}

// Remove deletes the first stored asset equal to a, scanning in id order.
// Removing an asset that is not in the store is an error.
func (s *FileStore) Remove(ctx context.Context, a *asset.Asset) error {
	if a == nil {
		return media.Wrap(media.ErrValidation, "storage", "remove", "asset is nil", nil)
	}
	id, found, err := s.findEqual(ctx, a)
	if err != nil {
		return err
	}
	if !found {
		return media.Wrap(media.ErrStorage, "storage", "remove", "asset not found", nil)
	}
	if _, err := s.execWithRetry(ctx, "DELETE FROM assets WHERE id = ?", id); err != nil {
		return media.Wrap(media.ErrStorage, "storage", "remove", "delete asset", err)
	}
	s.logger.Debug("asset removed", logging.FieldAssetID, strconv.FormatInt(id, 10))
	return nil
}

// Contains reports whether an equal asset is stored.
func (s *FileStore) Contains(ctx context.Context, a *asset.Asset) (bool, error) {
	if a == nil {
		return false, nil
	}
	_, found, err := s.findEqual(ctx, a)
	return found, err
}

func (s *FileStore) findEqual(ctx context.Context, a *asset.Asset) (int64, bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, payload FROM assets ORDER BY id")
	if err != nil {
		return 0, false, media.Wrap(media.ErrStorage, "storage", "scan", "query assets", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			id      int64
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return 0, false, media.Wrap(media.ErrStorage, "storage", "scan", "scan row", err)
		}
		stored, err := decodeAsset(payload)
		if err != nil {
			return 0, false, err
		}
		if stored.Equal(a) {
			return id, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return 0, false, media.Wrap(media.ErrStorage, "storage", "scan", "iterate rows", err)
	}
	return 0, false, nil
}

// Assets returns all stored assets in id order.
func (s *FileStore) Assets(ctx context.Context) ([]*asset.Asset, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM assets ORDER BY id")
	if err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "list", "query assets", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*asset.Asset
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, media.Wrap(media.ErrStorage, "storage", "list", "scan row", err)
		}
		a, err := decodeAsset(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "list", "iterate rows", err)
	}
	return out, nil
}

// Get fetches the asset stored under id, or false when the id is unknown.
func (s *FileStore) Get(ctx context.Context, id string) (*asset.Asset, bool, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, false, media.Wrap(media.ErrValidation, "storage", "get",
			fmt.Sprintf("malformed id %q", id), nil)
	}
	var payload []byte
	err = s.db.QueryRowContext(ctx, "SELECT payload FROM assets WHERE id = ?", rowID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, media.Wrap(media.ErrStorage, "storage", "get", "query asset", err)
	}
	a, err := decodeAsset(payload)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// List returns id, type, essence size, and creation time for every stored
// asset in id order.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, mime_type, created_at, payload FROM assets ORDER BY id")
	if err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "list", "query assets", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var (
			id        int64
			mimeType  string
			createdAt string
			payload   []byte
		)
		if err := rows.Scan(&id, &mimeType, &createdAt, &payload); err != nil {
			return nil, media.Wrap(media.ErrStorage, "storage", "list", "scan row", err)
		}
		a, err := decodeAsset(payload)
		if err != nil {
			return nil, err
		}
		entry := Entry{
			ID:       strconv.FormatInt(id, 10),
			MIMEType: mimeType,
			Size:     a.Size(),
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = ts
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "list", "iterate rows", err)
	}
	return out, nil
}

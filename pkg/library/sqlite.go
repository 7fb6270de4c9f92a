package library

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/brickyard/pkg/build"
	berrors "github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
)

// SQLiteStore keeps builds in a single SQLite database. Piece payloads are
// stored zstd-compressed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, berrors.New(berrors.ErrCodeInvalidConfig, "empty sqlite path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr(err, "create database dir")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr(err, "open %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, storageErr(err, "configure %s", path)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, storageErr(err, "migrate %s", path)
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS builds (
		name TEXT PRIMARY KEY,
		digest TEXT NOT NULL,
		count INTEGER NOT NULL,
		pieces BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (*Entry, error) {
	if err := berrors.ValidateBuildName(name); err != nil {
		return nil, err
	}
	var (
		blob    []byte
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT pieces, updated_at FROM builds WHERE name = ?`, name,
	).Scan(&blob, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "query build %s", name)
	}
	data, err := pkgio.Decompress(blob)
	if err != nil {
		return nil, berrors.Wrap(berrors.ErrCodeInvalidBuild, err, "stored build %s is corrupt", name)
	}
	return decodeEntry(name, data, time.UnixMilli(updated))
}

func (s *SQLiteStore) Put(ctx context.Context, name string, pieces build.Pieces) (*Entry, error) {
	e, payload, err := encodeEntry(name, pieces, time.Now())
	if err != nil {
		return nil, err
	}
	blob, err := pkgio.Compress(payload)
	if err != nil {
		return nil, storageErr(err, "compress build %s", name)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO builds (name, digest, count, pieces, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			digest = excluded.digest,
			count = excluded.count,
			pieces = excluded.pieces,
			updated_at = excluded.updated_at`,
		e.Name, e.Digest, len(e.Pieces), blob, e.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, storageErr(err, "save build %s", name)
	}
	return e, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := berrors.ValidateBuildName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM builds WHERE name = ?`, name)
	if err != nil {
		return storageErr(err, "delete build %s", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, count, digest, updated_at FROM builds ORDER BY name`)
	if err != nil {
		return nil, storageErr(err, "list builds")
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var (
			info    Info
			updated int64
		)
		if err := rows.Scan(&info.Name, &info.Count, &info.Digest, &updated); err != nil {
			return nil, storageErr(err, "scan build")
		}
		info.UpdatedAt = time.UnixMilli(updated).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list builds")
	}
	return infos, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)

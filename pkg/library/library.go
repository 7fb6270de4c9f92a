// Package library stores named builds.
//
// A [Store] maps a build name to the latest saved version of that build.
// Four backends are provided:
//   - file: one JSON document per build under a directory (the default)
//   - sqlite: a single database file, for larger collections
//   - redis: shared storage for several builder servers
//   - mongo: shared storage with document queries
//
// Every backend keeps the canonical JSON encoding of the pieces (see package
// io) and re-validates it when a build is loaded, so a corrupted record
// surfaces as an [errors.ErrCodeInvalidBuild] error rather than a broken
// build.
//
// # Usage
//
//	store, err := library.Open(ctx, cfg.Store)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if _, err := store.Put(ctx, "castle", ctrl.Pieces()); err != nil {
//	    return err
//	}
//	entry, err := store.Get(ctx, "castle")
//	if entry == nil {
//	    // no build with that name
//	}
//
// [errors.ErrCodeInvalidBuild]: github.com/matzehuels/brickyard/pkg/errors.ErrCodeInvalidBuild
package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/config"
	"github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/observability"
)

// Entry is one saved build.
type Entry struct {
	Name      string       `json:"name"`
	Pieces    build.Pieces `json:"pieces"`
	Digest    string       `json:"digest"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Info summarises a saved build without its pieces.
type Info struct {
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	Digest    string    `json:"digest"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Info returns the summary of e.
func (e *Entry) Info() Info {
	return Info{Name: e.Name, Count: len(e.Pieces), Digest: e.Digest, UpdatedAt: e.UpdatedAt}
}

// Store persists named builds.
type Store interface {
	// Get returns the build saved under name, or nil, nil if there is none.
	Get(ctx context.Context, name string) (*Entry, error)

	// Put saves pieces under name, replacing any previous version.
	Put(ctx context.Context, name string, pieces build.Pieces) (*Entry, error)

	// Delete removes the build saved under name. Deleting a missing build
	// returns an ErrCodeBuildNotFound error.
	Delete(ctx context.Context, name string) error

	// List returns every saved build, sorted by name.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

// Digest returns the hex SHA-256 of the canonical encoding of pieces.
func Digest(pieces build.Pieces) (string, error) {
	data, err := pkgio.Marshal(pieces)
	if err != nil {
		return "", err
	}
	return digestOf(data), nil
}

func digestOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// encodeEntry validates name and returns the canonical payload and the
// entry describing it.
func encodeEntry(name string, pieces build.Pieces, now time.Time) (*Entry, []byte, error) {
	if err := errors.ValidateBuildName(name); err != nil {
		return nil, nil, err
	}
	data, err := pkgio.Marshal(pieces)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "encode build %s", name)
	}
	return &Entry{
		Name:      name,
		Pieces:    pieces.Clone(),
		Digest:    digestOf(data),
		UpdatedAt: now.UTC().Truncate(time.Millisecond),
	}, data, nil
}

// decodeEntry rebuilds an entry from a stored payload.
func decodeEntry(name string, data []byte, updated time.Time) (*Entry, error) {
	pieces, err := pkgio.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuild, err, "stored build %s is corrupt", name)
	}
	digest, err := Digest(pieces)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode build %s", name)
	}
	return &Entry{
		Name:      name,
		Pieces:    pieces,
		Digest:    digest,
		UpdatedAt: updated.UTC(),
	}, nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeBuildNotFound, "no saved build named %q", name)
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}

// Open returns the backend selected by cfg.Backend. Every operation of the
// returned store is reported to the registered observability hooks.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendFile, "":
		s, err = NewFileStore(cfg.Dir)
	case config.BackendSQLite:
		s, err = NewSQLiteStore(cfg.SQLitePath)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case config.BackendMongo:
		s, err = NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = config.BackendFile
	}
	return &instrumented{backend: backend, next: s}, nil
}

type instrumented struct {
	backend string
	next    Store
}

func (s *instrumented) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, s.backend, op, time.Since(start), err)
}

func (s *instrumented) Get(ctx context.Context, name string) (*Entry, error) {
	start := time.Now()
	e, err := s.next.Get(ctx, name)
	s.report(ctx, "get", start, err)
	return e, err
}

func (s *instrumented) Put(ctx context.Context, name string, pieces build.Pieces) (*Entry, error) {
	start := time.Now()
	e, err := s.next.Put(ctx, name, pieces)
	s.report(ctx, "put", start, err)
	return e, err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := s.next.Delete(ctx, name)
	s.report(ctx, "delete", start, err)
	return err
}

func (s *instrumented) List(ctx context.Context) ([]Info, error) {
	start := time.Now()
	infos, err := s.next.List(ctx)
	s.report(ctx, "list", start, err)
	return infos, err
}

func (s *instrumented) Close() error { return s.next.Close() }

package library

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/brickyard/pkg/build"
	berrors "github.com/matzehuels/brickyard/pkg/errors"
)

// RedisStore keeps each build as a JSON string under <prefix>build:<name>
// and the set of names under <prefix>builds.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type redisRecord struct {
	Digest    string          `json:"digest"`
	UpdatedAt time.Time       `json:"updated_at"`
	Count     int             `json:"count"`
	Pieces    json.RawMessage `json:"pieces"`
}

// NewRedisStore connects to the server at url (redis://host:port/db).
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, berrors.Wrap(berrors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := ping(ctx, func(ctx context.Context) error { return client.Ping(ctx).Err() }); err != nil {
		_ = client.Close()
		return nil, storageErr(err, "connect to redis at %s", opts.Addr)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(name string) string { return s.prefix + "build:" + name }
func (s *RedisStore) indexKey() string       { return s.prefix + "builds" }

func (s *RedisStore) Get(ctx context.Context, name string) (*Entry, error) {
	if err := berrors.ValidateBuildName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "get build %s", name)
	}
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, berrors.Wrap(berrors.ErrCodeInvalidBuild, err, "stored build %s is corrupt", name)
	}
	return decodeEntry(name, rec.Pieces, rec.UpdatedAt)
}

func (s *RedisStore) Put(ctx context.Context, name string, pieces build.Pieces) (*Entry, error) {
	e, payload, err := encodeEntry(name, pieces, time.Now())
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(redisRecord{
		Digest:    e.Digest,
		UpdatedAt: e.UpdatedAt,
		Count:     len(e.Pieces),
		Pieces:    payload,
	})
	if err != nil {
		return nil, storageErr(err, "marshal build %s", name)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(name), data, 0)
		pipe.SAdd(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "save build %s", name)
	}
	return e, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := berrors.ValidateBuildName(name); err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return storageErr(err, "delete build %s", name)
	}
	if del.Val() == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, storageErr(err, "list builds")
	}
	slices.Sort(names)
	if len(names) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.StringCmd, len(names))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			cmds[i] = pipe.Get(ctx, s.key(name))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, storageErr(err, "list builds")
	}

	infos := make([]Info, 0, len(names))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			continue
		}
		var rec redisRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:      names[i],
			Count:     rec.Count,
			Digest:    rec.Digest,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return infos, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

// Flush removes every key under the store prefix. It is meant for tests.
func (s *RedisStore) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

var _ Store = (*RedisStore)(nil)

package querycache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPrefix    = "bookingflow:q:"
	redisGenPrefix = "bookingflow:gen:"
)

var errStaleGeneration = errors.New("querycache: generation changed")

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedis(client), nil
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, redisPrefix+string(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, redisPrefix+string(key), value, ttl).Err()
}

func (r *Redis) Generation(ctx context.Context, key Key) (uint64, error) {
	gen, err := r.client.Get(ctx, redisGenPrefix+string(key.root())).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration watches the generation counter so an Invalidate landing
// between the check and the write aborts the write.
func (r *Redis) SetIfGeneration(ctx context.Context, key Key, value []byte, ttl time.Duration, gen uint64) (bool, error) {
	genKey := redisGenPrefix + string(key.root())
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisPrefix+string(key), value, ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return err == nil, err
}

// Invalidate deletes each key and its scoped/parameterised variants. The
// generations are bumped first: a conditional write that slips in after the
// bump fails, one that landed before it is found by the scan below.
func (r *Redis) Invalidate(ctx context.Context, keys ...Key) error {
	bump := r.client.Pipeline()
	for _, k := range keys {
		bump.Incr(ctx, redisGenPrefix+string(k.root()))
	}
	if _, err := bump.Exec(ctx); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	for _, k := range keys {
		base := redisPrefix + string(k)
		pipe.Del(ctx, base)
		glob := escapeGlob(base)
		for _, pattern := range []string{glob + "|*", glob + `\?*`} {
			iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
			for iter.Next(ctx) {
				pipe.Del(ctx, iter.Val())
			}
			if err := iter.Err(); err != nil {
				return err
			}
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

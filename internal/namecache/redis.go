package namecache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/derickschaefer/pitwall/internal/model"
)

// RedisBackend shares the name cache between machines. Each dimension is
// two hashes: <prefix>names:<dim> (name -> id) and <prefix>labels:<dim>
// (id -> label).
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to addr and verifies the connection.
func NewRedisBackend(ctx context.Context, addr, password string, db int) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", addr, err)
	}
	return &RedisBackend{client: client, prefix: "pitwall:"}, nil
}

func (r *RedisBackend) namesKey(dim model.Dimension) string {
	return r.prefix + "names:" + string(dim)
}

func (r *RedisBackend) labelsKey(dim model.Dimension) string {
	return r.prefix + "labels:" + string(dim)
}

func (r *RedisBackend) Load(ctx context.Context, dim model.Dimension) (model.NameEntry, error) {
	e := model.NewNameEntry()
	names, err := r.client.HGetAll(ctx, r.namesKey(dim)).Result()
	if err != nil {
		return e, fmt.Errorf("reading %s: %w", r.namesKey(dim), err)
	}
	for k, v := range names {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		e.Names[k] = id
	}
	labels, err := r.client.HGetAll(ctx, r.labelsKey(dim)).Result()
	if err != nil {
		return e, fmt.Errorf("reading %s: %w", r.labelsKey(dim), err)
	}
	for k, v := range labels {
		e.Labels[k] = v
	}
	return e, nil
}

func (r *RedisBackend) Merge(ctx context.Context, dim model.Dimension, add model.NameEntry) error {
	pipe := r.client.TxPipeline()
	if len(add.Names) > 0 {
		vals := make(map[string]interface{}, len(add.Names))
		for k, v := range add.Names {
			vals[k] = v
		}
		pipe.HSet(ctx, r.namesKey(dim), vals)
	}
	if len(add.Labels) > 0 {
		vals := make(map[string]interface{}, len(add.Labels))
		for k, v := range add.Labels {
			vals[k] = v
		}
		pipe.HSet(ctx, r.labelsKey(dim), vals)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing names for %s: %w", dim, err)
	}
	return nil
}

// Clear removes every cached dimension.
func (r *RedisBackend) Clear(ctx context.Context) error {
	keys := make([]string, 0, 2*len(model.AllDimensions))
	for _, d := range model.AllDimensions {
		keys = append(keys, r.namesKey(d), r.labelsKey(d))
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close releases the connection pool.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}

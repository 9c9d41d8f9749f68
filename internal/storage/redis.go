package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rogersnm/linkbook/internal/model"
)

// Redis stores the collection as a single string value.
type Redis struct {
	rdb *goredis.Client
	key string
	log *zap.Logger
}

var _ Backend = (*Redis)(nil)

// OpenRedis connects to addr and pings it before returning.
func OpenRedis(ctx context.Context, addr, namespace string, log *zap.Logger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(rdb, namespace, log), nil
}

func NewRedis(rdb *goredis.Client, namespace string, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	key := Key
	if namespace != "" {
		key = namespace + ":" + Key
	}
	return &Redis{rdb: rdb, key: key, log: log}
}

func (r *Redis) Load(ctx context.Context) ([]model.ManagedObject, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []model.ManagedObject{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return decode(data, r.log), nil
}

func (r *Redis) Save(ctx context.Context, objects []model.ManagedObject) error {
	data, err := encode(objects)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

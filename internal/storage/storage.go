// Package storage provides the backends that persist a collection of managed
// objects as a single JSON document under a fixed key.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rogersnm/linkbook/internal/config"
	"github.com/rogersnm/linkbook/internal/model"
)

// Key names the slot every backend stores the collection under.
const Key = "managedObjects"

type Backend interface {
	Load(ctx context.Context) ([]model.ManagedObject, error)
	Save(ctx context.Context, objects []model.ManagedObject) error
	Close() error
}

// Open builds the backend named by cfg. Relative paths resolve against dataDir.
func Open(ctx context.Context, cfg config.StorageConfig, dataDir string, log *zap.Logger) (Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	name := cfg.BackendName()
	if err := config.ValidateBackend(name); err != nil {
		return nil, err
	}
	log = log.With(zap.String("backend", name))

	switch name {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "linkbook.db"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		return OpenSQLite(ctx, path, log)
	case config.BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires storage.postgres_dsn")
		}
		return OpenPostgres(ctx, cfg.PostgresDSN, log)
	case config.BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires storage.redis_addr")
		}
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisNamespace, log)
	default:
		return NewFile(dataDir, log), nil
	}
}

func encode(objects []model.ManagedObject) ([]byte, error) {
	if objects == nil {
		objects = []model.ManagedObject{}
	}
	data, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("encoding objects: %w", err)
	}
	return data, nil
}

// decode treats an empty or unparseable payload as an empty collection.
func decode(data []byte, log *zap.Logger) []model.ManagedObject {
	objects := []model.ManagedObject{}
	if len(data) == 0 {
		return objects
	}
	if err := json.Unmarshal(data, &objects); err != nil {
		log.Warn("discarding unparseable stored objects", zap.Error(err), zap.Int("bytes", len(data)))
		return []model.ManagedObject{}
	}
	for i := range objects {
		if objects[i].RelatedObjectIDs == nil {
			objects[i].RelatedObjectIDs = []int64{}
		}
	}
	return objects
}

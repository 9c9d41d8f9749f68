package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/rogersnm/linkbook/internal/model"
)

const (
	lockTimeout    = 3 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// File stores the collection in <dir>/managedObjects.json. A sibling .lock
// file serializes access between processes.
type File struct {
	dir  string
	path string
	lock *flock.Flock
	log  *zap.Logger
}

var _ Backend = (*File)(nil)

func NewFile(dir string, log *zap.Logger) *File {
	if log == nil {
		log = zap.NewNop()
	}
	path := filepath.Join(dir, Key+".json")
	return &File{
		dir:  dir,
		path: path,
		lock: flock.New(path + ".lock"),
		log:  log,
	}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context) ([]model.ManagedObject, error) {
	if _, err := os.Stat(f.dir); errors.Is(err, os.ErrNotExist) {
		return []model.ManagedObject{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := f.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquiring read lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire read lock on %s", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.ManagedObject{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	return decode(data, f.log), nil
}

// Save writes to a temp file and renames it over the previous contents.
func (f *File) Save(ctx context.Context, objects []model.ManagedObject) error {
	data, err := encode(objects)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", f.dir, err)
	}

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquiring write lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire write lock on %s", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	tmp, err := os.CreateTemp(f.dir, Key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	f.log.Debug("saved objects", zap.String("path", f.path), zap.Int("count", len(objects)))
	return nil
}

func (f *File) Close() error {
	return f.lock.Close()
}

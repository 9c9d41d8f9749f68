package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/rogersnm/linkbook/internal/model"
)

// Backend persists the full collection under a single key.
type Backend interface {
	// Load returns the saved collection, or an empty one when nothing usable
	// is stored.
	Load(ctx context.Context) ([]model.ManagedObject, error)
	// Save overwrites the stored collection.
	Save(ctx context.Context, objects []model.ManagedObject) error
}

// Store owns the authoritative collection of managed objects and the view of
// it filtered by the active search query. Every mutation keeps related links
// symmetric and free of dangling or self references.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	log      *zap.Logger
	objects  []model.ManagedObject
	query    string
	filtered []model.ManagedObject
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New loads the collection from backend. Stored data that breaks the link
// invariants is repaired in memory; the repair is persisted with the next
// mutation.
func New(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{backend: backend, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading objects: %w: %w", ErrStorageUnavailable, err)
	}
	objects, repairs := normalize(loaded)
	if repairs > 0 {
		s.log.Info("repaired stored relationships", zap.Int("repairs", repairs))
	}
	s.objects = objects
	s.refilter()
	return s, nil
}

// Create adds candidate to the collection and links every existing object it
// names back to it. Related ids that are absent, repeated or equal to the
// candidate's own id are dropped.
func (s *Store) Create(ctx context.Context, candidate model.ManagedObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.objects {
		if model.SameName(o.Name, candidate.Name) {
			return fmt.Errorf("%w: %q", ErrDuplicateName, candidate.Name)
		}
	}
	if _, ok := s.position(candidate.ID); ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, candidate.ID)
	}

	next := cloneAll(s.objects)
	idx := indexByID(next)

	c := candidate.Clone()
	c.RelatedObjectIDs = normalizeRelated(c.ID, c.RelatedObjectIDs, idx)
	for _, r := range c.RelatedObjectIDs {
		next[idx[r]].Link(c.ID)
	}
	next = append(next, c)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("created object", zap.Int64("id", c.ID), zap.Int64s("related", c.RelatedObjectIDs))
	return nil
}

// Update merges upd into the object with the given id. When the update carries
// related ids, peers gained since the previous list link back to the object and
// peers dropped from it unlink. Updating a missing id is a no-op.
func (s *Store) Update(ctx context.Context, id int64, upd model.ObjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.position(id)
	if !ok {
		s.log.Debug("update of missing object ignored", zap.Int64("id", id))
		return nil
	}
	if upd.IsEmpty() {
		return nil
	}

	next := cloneAll(s.objects)
	idx := indexByID(next)
	target := &next[i]
	old := slices.Clone(target.RelatedObjectIDs)

	upd.Apply(target)

	var added, removed []int64
	if upd.RelatedObjectIDs != nil {
		target.RelatedObjectIDs = normalizeRelated(id, target.RelatedObjectIDs, idx)
		added, removed = diff(old, target.RelatedObjectIDs)
		for _, r := range added {
			next[idx[r]].Link(id)
		}
		for _, r := range removed {
			if j, ok := idx[r]; ok {
				next[j].Unlink(id)
			}
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("updated object", zap.Int64("id", id), zap.Int64s("added", added), zap.Int64s("removed", removed))
	return nil
}

// Delete removes the object and strips its id from every remaining object.
// Deleting a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.position(id)
	if !ok {
		s.log.Debug("delete of missing object ignored", zap.Int64("id", id))
		return nil
	}

	next := make([]model.ManagedObject, 0, len(s.objects)-1)
	for j, o := range s.objects {
		if j == i {
			continue
		}
		o = o.Clone()
		o.Unlink(id)
		next = append(next, o)
	}

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug("deleted object", zap.Int64("id", id))
	return nil
}

// Objects returns a copy of the authoritative collection.
func (s *Store) Objects() []model.ManagedObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.objects)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *Store) Get(id int64) (model.ManagedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.position(id)
	if !ok {
		return model.ManagedObject{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s.objects[i].Clone(), nil
}

// FindByName looks an object up by case-insensitive name.
func (s *Store) FindByName(name string) (model.ManagedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.objects {
		if model.SameName(o.Name, name) {
			return o.Clone(), nil
		}
	}
	return model.ManagedObject{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Related resolves the objects linked to id, in link order.
func (s *Store) Related(id int64) ([]model.ManagedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.position(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	idx := indexByID(s.objects)
	out := make([]model.ManagedObject, 0, len(s.objects[i].RelatedObjectIDs))
	for _, r := range s.objects[i].RelatedObjectIDs {
		if j, ok := idx[r]; ok {
			out = append(out, s.objects[j].Clone())
		}
	}
	return out, nil
}

// Sync writes the in-memory collection to the backend. It persists repairs
// made while loading without waiting for the next mutation.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, cloneAll(s.objects))
}

// commit persists next and only then makes it the authoritative collection.
func (s *Store) commit(ctx context.Context, next []model.ManagedObject) error {
	if err := s.backend.Save(ctx, next); err != nil {
		s.log.Error("saving objects", zap.Error(err))
		return fmt.Errorf("saving objects: %w: %w", ErrStorageUnavailable, err)
	}
	s.objects = next
	s.refilter()
	return nil
}

func (s *Store) position(id int64) (int, bool) {
	for i := range s.objects {
		if s.objects[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

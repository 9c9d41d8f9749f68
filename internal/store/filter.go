package store

import "github.com/rogersnm/linkbook/internal/model"

// Filter sets the active search query and recomputes the filtered view. An
// empty query selects the whole collection.
func (s *Store) Filter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.refilter()
}

func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Filtered returns a copy of the objects matching the active query.
func (s *Store) Filtered() []model.ManagedObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.filtered)
}

// refilter derives the filtered view from the collection and the active query.
// Callers hold s.mu.
func (s *Store) refilter() {
	view := make([]model.ManagedObject, 0, len(s.objects))
	for i := range s.objects {
		if s.objects[i].Matches(s.query) {
			view = append(view, s.objects[i].Clone())
		}
	}
	s.filtered = view
}

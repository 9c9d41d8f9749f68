package store

import (
	"slices"

	"github.com/rogersnm/linkbook/internal/model"
)

func cloneAll(objects []model.ManagedObject) []model.ManagedObject {
	out := make([]model.ManagedObject, len(objects))
	for i := range objects {
		out[i] = objects[i].Clone()
	}
	return out
}

func indexByID(objects []model.ManagedObject) map[int64]int {
	idx := make(map[int64]int, len(objects))
	for i := range objects {
		idx[objects[i].ID] = i
	}
	return idx
}

// normalizeRelated drops self, absent and repeated ids, keeping first-seen order.
func normalizeRelated(self int64, related []int64, present map[int64]int) []int64 {
	out := make([]int64, 0, len(related))
	for _, r := range related {
		if r == self || slices.Contains(out, r) {
			continue
		}
		if _, ok := present[r]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// diff returns next − prev and prev − next.
func diff(prev, next []int64) (added, removed []int64) {
	for _, r := range next {
		if !slices.Contains(prev, r) {
			added = append(added, r)
		}
	}
	for _, r := range prev {
		if !slices.Contains(next, r) {
			removed = append(removed, r)
		}
	}
	return added, removed
}

// normalize rebuilds a loaded collection so that it satisfies the link
// invariants: later duplicates of an id are dropped, related lists lose
// self, absent and repeated ids, and one-sided links are made mutual. It
// returns the number of changes made.
func normalize(loaded []model.ManagedObject) ([]model.ManagedObject, int) {
	repairs := 0
	objects := make([]model.ManagedObject, 0, len(loaded))
	seen := make(map[int64]bool, len(loaded))
	for _, o := range loaded {
		if seen[o.ID] {
			repairs++
			continue
		}
		seen[o.ID] = true
		objects = append(objects, o.Clone())
	}

	idx := indexByID(objects)
	for i := range objects {
		before := len(objects[i].RelatedObjectIDs)
		objects[i].RelatedObjectIDs = normalizeRelated(objects[i].ID, objects[i].RelatedObjectIDs, idx)
		repairs += before - len(objects[i].RelatedObjectIDs)
	}
	for i := range objects {
		for _, r := range objects[i].RelatedObjectIDs {
			if objects[idx[r]].Link(objects[i].ID) {
				repairs++
			}
		}
	}
	return objects, repairs
}

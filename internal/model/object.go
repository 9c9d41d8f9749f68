package model

import (
	"fmt"
	"slices"
	"strings"
)

type ManagedObject struct {
	ID               int64   `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	Description      string  `json:"description" yaml:"-"`
	Type             string  `json:"type" yaml:"type"`
	RelatedObjectIDs []int64 `json:"relatedObjectIds" yaml:"related,omitempty"`
}

// Validate checks the fields required at creation time.
func (o *ManagedObject) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("object id must be positive")
	}
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("object name is required")
	}
	if strings.TrimSpace(o.Description) == "" {
		return fmt.Errorf("object description is required")
	}
	if strings.TrimSpace(o.Type) == "" {
		return fmt.Errorf("object type is required")
	}
	return nil
}

// Clone returns a copy that shares no memory with o.
func (o ManagedObject) Clone() ManagedObject {
	o.RelatedObjectIDs = slices.Clone(o.RelatedObjectIDs)
	if o.RelatedObjectIDs == nil {
		o.RelatedObjectIDs = []int64{}
	}
	return o
}

func (o *ManagedObject) IsRelatedTo(id int64) bool {
	return slices.Contains(o.RelatedObjectIDs, id)
}

// Link adds id to the related set. It reports whether the set changed.
func (o *ManagedObject) Link(id int64) bool {
	if id == o.ID || o.IsRelatedTo(id) {
		return false
	}
	o.RelatedObjectIDs = append(o.RelatedObjectIDs, id)
	return true
}

// Unlink removes id from the related set. It reports whether the set changed.
func (o *ManagedObject) Unlink(id int64) bool {
	before := len(o.RelatedObjectIDs)
	o.RelatedObjectIDs = slices.DeleteFunc(o.RelatedObjectIDs, func(r int64) bool { return r == id })
	return len(o.RelatedObjectIDs) != before
}

// Matches reports whether query is a case-insensitive substring of the
// name or the description. The empty query matches everything.
func (o *ManagedObject) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(o.Name), q) ||
		strings.Contains(strings.ToLower(o.Description), q)
}

// SameName compares names case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

package model

import "slices"

// ObjectUpdate is a partial field set. Nil fields are left untouched.
type ObjectUpdate struct {
	Name             *string
	Description      *string
	Type             *string
	RelatedObjectIDs *[]int64
}

func (u ObjectUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Type == nil && u.RelatedObjectIDs == nil
}

// Apply merges u into o (shallow overwrite).
func (u ObjectUpdate) Apply(o *ManagedObject) {
	if u.Name != nil {
		o.Name = *u.Name
	}
	if u.Description != nil {
		o.Description = *u.Description
	}
	if u.Type != nil {
		o.Type = *u.Type
	}
	if u.RelatedObjectIDs != nil {
		o.RelatedObjectIDs = slices.Clone(*u.RelatedObjectIDs)
	}
}

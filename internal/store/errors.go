package store

import "errors"

var (
	ErrDuplicateName      = errors.New("an object with this name already exists")
	ErrDuplicateID        = errors.New("an object with this id already exists")
	ErrNotFound           = errors.New("object not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

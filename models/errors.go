package models

import "errors"

// Errors shared by both data paths so handlers can map them without knowing which
// backend produced them.
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidParent  = errors.New("parent comment must be a top-level comment on the same post")
	ErrInvalidAuthor  = errors.New("comment author does not exist")
	ErrInvalidComment = errors.New("comment content cannot be empty")
)

package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Template table errors.
var (
	ErrNotFound        = errors.New("template not found")
	ErrInvalidID       = errors.New("invalid template ID")
	ErrInvalidData     = errors.New("invalid template data")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidSlug     = errors.New("invalid slug")
	ErrInvalidCategory = errors.New("invalid category")
	ErrDuplicateSlug   = errors.New("slug already in use")
	ErrInvalidFilter   = errors.New("invalid filter")
)

// Resolution input errors.
var (
	ErrInvalidMode = errors.New("invalid mode")
)

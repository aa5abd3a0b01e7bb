package service

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden         = errors.New("access denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrImageRequired     = fmt.Errorf("%w: image file is required", ErrInvalidInput)
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrEmailNotFound     = errors.New("email not registered")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrCategoryNotFound  = errors.New("category does not exist")
	ErrNotFound          = errors.New("product not found")
	ErrUploadFailed      = errors.New("image upload failed")
	ErrImageDeleteFailed = errors.New("image delete failed")
	ErrSearchDisabled    = errors.New("search is not configured")
)

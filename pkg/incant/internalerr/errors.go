package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDisposed      = errors.New("engine disposed")
	ErrInvalidConfig = errors.New("invalid configuration")
)

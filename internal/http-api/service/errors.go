package service

import "errors"

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("authentication required")
)

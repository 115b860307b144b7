package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrBuildBusy     = errors.New("build already in progress")
	ErrUnauthorized  = errors.New("unauthorized")
)

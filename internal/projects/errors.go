package projects

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("project not found")
	ErrForbidden    = errors.New("not a project member")
)

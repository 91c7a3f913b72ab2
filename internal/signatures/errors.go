package signatures

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("signature not found")
	ErrRoleAlreadySigned = errors.New("role already signed")
)

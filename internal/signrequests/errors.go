package signrequests

import (
	"errors"

	"signing-backend/internal/signatures"
)

var (
	ErrNotFound      = errors.New("signature request not found")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpired       = errors.New("signature request expired")
	ErrAlreadySigned = errors.New("signature request already signed")
	ErrCancelled     = errors.New("signature request cancelled")

	// Shared with signatures so callers can match either package's value.
	ErrInvalidInput      = signatures.ErrInvalidInput
	ErrRoleAlreadySigned = signatures.ErrRoleAlreadySigned
)

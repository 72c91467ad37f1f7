package domain

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrDecode              = errors.New("upstream returned no usable data")
	ErrServiceError        = errors.New("service error")
	ErrAlreadyRegistered   = errors.New("already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

package upstream

import (
	"errors"

	"dealership_api/internal/domain"
)

type Kind int

const (
	KindUnavailable Kind = iota // network failure, timeout, cancellation
	KindStatus                  // upstream answered non-2xx
	KindEmpty                   // 2xx with an empty body
	KindDecode                  // body is not the expected JSON
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindStatus:
		return "status"
	case KindEmpty:
		return "empty"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is the only error shape the client returns. Status is the upstream
// status when one was received, 503 otherwise.
type Error struct {
	Kind    Kind
	Service string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Service + ": " + e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Service + ": " + e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps empty/undecodable bodies onto domain.ErrDecode and every other
// failure onto domain.ErrUpstreamUnavailable.
func (e *Error) Is(target error) bool {
	switch target {
	case domain.ErrDecode:
		return e.Kind == KindEmpty || e.Kind == KindDecode
	case domain.ErrUpstreamUnavailable:
		return e.Kind == KindUnavailable || e.Kind == KindStatus
	}
	return false
}

// Envelope is the {status, message} object handed to callers that pass
// upstream failures through instead of failing.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Envelope() Envelope {
	return Envelope{Status: e.Status, Message: e.Message}
}

// AsError unwraps err into *Error.
func AsError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

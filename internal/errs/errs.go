package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transport layers can map it to a stable
// client-facing status without inspecting entity-specific error types.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyExists
	KindForbidden
	KindInvalidTimestamp
	KindStorageConflict
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindForbidden:
		return "forbidden"
	case KindInvalidTimestamp:
		return "invalid_timestamp"
	case KindStorageConflict:
		return "storage_conflict"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing service boundaries. Entity and Key
// identify what the failure is about; Reason is free-form context for
// forbidden/validation failures.
type Error struct {
	Kind   Kind
	Entity string
	Key    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Entity != "" && e.Key != "":
		return fmt.Sprintf("%s %q: %s", e.Entity, e.Key, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(entity, key string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Key: key}
}

func AlreadyExists(entity, key string) *Error {
	return &Error{Kind: KindAlreadyExists, Entity: entity, Key: key}
}

func Forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason}
}

func InvalidTimestamp(reason string) *Error {
	return &Error{Kind: KindInvalidTimestamp, Reason: reason}
}

func StorageConflict(key string) *Error {
	return &Error{Kind: KindStorageConflict, Entity: "attachment", Key: key}
}

func StorageUnavailable(err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Err: err}
}

// KindOf extracts the kind from any error in the chain, KindUnknown if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

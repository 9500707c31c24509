// Package matcherrors defines the tagged error-kind taxonomy shared by the
// admission, queueindex, matcher, and notifier packages. Kinds are modeled as
// explicit variants rather than opaque strings because the Matcher's retry
// loop and the Admission Gateway's response mapping both branch on them.
package matcherrors

import (
	"errors"
	"fmt"
)

// Kind tags an Error with one of the failure categories of the design.
type Kind int

const (
	// KindUnauthenticated means the caller has no verified identity.
	KindUnauthenticated Kind = iota
	// KindMalformedRequest means the request body could not be parsed or validated.
	KindMalformedRequest
	// KindAlreadyQueued means a QueueEntry already exists for (time_control, player).
	KindAlreadyQueued
	// KindProfileLookupFailed means the profile store could not be read; callers
	// fall back to the default rating rather than fail.
	KindProfileLookupFailed
	// KindIndexWriteFailed means a Queue Index write failed for an infra reason.
	KindIndexWriteFailed
	// KindConflictingWaiter means one side of a pair_txn was no longer waiting.
	KindConflictingWaiter
	// KindTransient means a retryable infrastructure failure.
	KindTransient
	// KindNotConnected means the Notifier found no session binding for a player.
	KindNotConnected
	// KindGone means the Notifier's endpoint refused the push (stale binding).
	KindGone
	// KindGameNotFound means a referenced game_id has no matching Game row.
	KindGameNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindMalformedRequest:
		return "MalformedRequest"
	case KindAlreadyQueued:
		return "AlreadyQueued"
	case KindProfileLookupFailed:
		return "ProfileLookupFailed"
	case KindIndexWriteFailed:
		return "IndexWriteFailed"
	case KindConflictingWaiter:
		return "ConflictingWaiter"
	case KindTransient:
		return "Transient"
	case KindNotConnected:
		return "NotConnected"
	case KindGone:
		return "Gone"
	case KindGameNotFound:
		return "GameNotFound"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can switch on the
// category without string matching.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged Error from a Kind and an optional cause.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind == kind
	}
	return false
}

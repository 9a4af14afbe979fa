// Package apperr defines the error taxonomy shared by the content engine and
// its HTTP surface. Every error carries a kind plus the offending entity and
// identifier so callers can decide whether a retry makes sense.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindDuplicateMembership Kind = "DUPLICATE_MEMBERSHIP"
	KindInvalidPayload      Kind = "INVALID_PAYLOAD"
	KindInvalidOrdering     Kind = "INVALID_ORDERING"
	KindNothingToClear      Kind = "NOTHING_TO_CLEAR"
	KindStorage             Kind = "STORAGE_ERROR"
	KindCancelled           Kind = "CANCELLED"
)

// Sentinels for errors.Is; they match on Kind only.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrDuplicateMembership = &Error{Kind: KindDuplicateMembership}
	ErrInvalidPayload      = &Error{Kind: KindInvalidPayload}
	ErrInvalidOrdering     = &Error{Kind: KindInvalidOrdering}
	ErrNothingToClear      = &Error{Kind: KindNothingToClear}
	ErrStorage             = &Error{Kind: KindStorage}
	ErrCancelled           = &Error{Kind: KindCancelled}
)

type Error struct {
	Kind   Kind
	Entity string
	ID     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Entity != "" {
		msg += " " + e.Entity
	}
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func idString(id any) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: idString(id)}
}

func DuplicateMembership(entity string, id any, detail string) *Error {
	return &Error{Kind: KindDuplicateMembership, Entity: entity, ID: idString(id), Detail: detail}
}

func InvalidPayload(entity string, id any, detail string) *Error {
	return &Error{Kind: KindInvalidPayload, Entity: entity, ID: idString(id), Detail: detail}
}

func InvalidOrdering(entity string, id any, detail string) *Error {
	return &Error{Kind: KindInvalidOrdering, Entity: entity, ID: idString(id), Detail: detail}
}

func NothingToClear(entity string) *Error {
	return &Error{Kind: KindNothingToClear, Entity: entity, Detail: "family is already empty"}
}

// Cancelled reports an operation stopped by its context, either a caller
// going away or a deadline running out.
func Cancelled(op string, err error) *Error {
	return &Error{Kind: KindCancelled, Detail: op, Err: err}
}

// Storage wraps a persistence failure. Errors that already carry a kind pass
// through untouched so a NotFound raised inside a transaction keeps its kind.
// Context errors become Cancelled.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Cancelled(op, err)
	}
	return &Error{Kind: KindStorage, Detail: op, Err: err}
}

// KindOf returns the kind of err, or KindStorage for anything unclassified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

// Status maps an error to the HTTP status the API reports for it.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateMembership, KindInvalidPayload, KindInvalidOrdering, KindNothingToClear:
		return http.StatusBadRequest
	case KindCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

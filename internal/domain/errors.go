package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidSession = errors.New("invalid session")
)

// SQLSTATE codes the store reports as something other than a plain rejection.
const (
	CodeUniqueViolation = "23505"
)

// BackendError is a rejection reported by the remote store.
type BackendError struct {
	Code    string
	Message string
	Detail  string
}

func (e *BackendError) Error() string {
	return strings.TrimSpace(e.Message + " " + e.Detail)
}

// FailureKind classifies a failed Result. It is empty on success.
type FailureKind string

const (
	// FailureRejected is a refusal by the remote store or an unclassified error.
	FailureRejected FailureKind = "rejected"
	FailureNotFound FailureKind = "not_found"
	FailureConflict FailureKind = "conflict"
	FailureInvalid  FailureKind = "invalid"
)

// Result is the uniform outcome of a store mutation.
// swagger:model Result
type Result struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Kind    FailureKind `json:"-"`
}

// OK returns a successful Result.
func OK() Result {
	return Result{Success: true}
}

// Failed returns a failed Result of the given kind with msg as its error.
func Failed(kind FailureKind, msg string) Result {
	return Result{Error: msg, Kind: kind}
}

// Fail returns a failed Result describing err. Backend rejections render as
// "message detail"; the kind comes from sentinel errors and the SQLSTATE,
// never from the message text.
func Fail(err error) Result {
	return Failed(failureKind(err), failureMessage(err))
}

func failureMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Error()
	}
	return err.Error()
}

func failureKind(err error) FailureKind {
	var be *BackendError
	switch {
	case errors.As(err, &be):
		if be.Code == CodeUniqueViolation {
			return FailureConflict
		}
		return FailureRejected
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrInvalidInput):
		return FailureInvalid
	}
	return FailureRejected
}

package domain

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error classification.
type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeDecryptionFailed Code = "DECRYPTION_FAILED"
	CodeInternal         Code = "INTERNAL"
)

// Error is a classified application error. Message is safe to show to the
// caller; Cause is for logs only.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf classifies an arbitrary error. Unclassified errors are internal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Errors surfaced by the messaging subsystem. ErrNotParticipant is
// deliberately the only thing non-participants ever see, whether or not the
// conversation exists.
var (
	ErrMissingParticipants   = New(CodeInvalidArgument, "missing participants")
	ErrDuplicateParticipants = New(CodeInvalidArgument, "duplicate participants")
	ErrParticipantNotFound   = New(CodeInvalidArgument, "participant does not exist")
	ErrEmptyMessage          = New(CodeInvalidArgument, "message length can not be 0")
	ErrNotParticipant        = New(CodePermissionDenied, "You are not a participant in this conversation")
	ErrConversationNotFound  = New(CodeNotFound, "conversation not found")
	ErrUserNotFound          = New(CodeNotFound, "user not found")
	ErrUsernameTaken         = New(CodeAlreadyExists, "username already registered")
	ErrEmailTaken            = New(CodeAlreadyExists, "email already registered")
	ErrInvalidCredentials    = New(CodeUnauthenticated, "incorrect username or password")
	ErrInactiveUser          = New(CodeUnauthenticated, "user account is inactive")
	ErrRateLimited           = New(CodeRateLimited, "too many requests")
)

package models

import (
	"errors"
)

// ErrorKind classifies expected failures so callers can react without string matching
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation_error"
	KindAuth            ErrorKind = "auth_error"
	KindQuotaExceeded   ErrorKind = "quota_exceeded"
	KindProvider        ErrorKind = "provider_error"
	KindUnknownProvider ErrorKind = "unknown_provider"
	KindEmptyResponse   ErrorKind = "empty_response"
	KindRagRetrieval    ErrorKind = "rag_retrieval_error"
	KindIndexMismatch   ErrorKind = "index_mismatch"
	KindPartialIngest   ErrorKind = "partial_ingest_failure"
	KindNotFound        ErrorKind = "not_found"
)

// Sentinels for errors.Is checks. They match any *Error of the same kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrAuth            = &Error{Kind: KindAuth}
	ErrQuotaExceeded   = &Error{Kind: KindQuotaExceeded}
	ErrProvider        = &Error{Kind: KindProvider}
	ErrUnknownProvider = &Error{Kind: KindUnknownProvider}
	ErrEmptyResponse   = &Error{Kind: KindEmptyResponse}
	ErrRagRetrieval    = &Error{Kind: KindRagRetrieval}
	ErrIndexMismatch   = &Error{Kind: KindIndexMismatch}
	ErrPartialIngest   = &Error{Kind: KindPartialIngest}
	ErrNotFound        = &Error{Kind: KindNotFound}
)

// Error is a classified, user-presentable failure
type Error struct {
	Kind    ErrorKind
	Message string // short human readable text, safe to show to end users
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel (message-less) error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// NewError creates a classified error
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first classified error in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Common error constructors
func NewValidationError(message string) *Error {
	return NewError(KindValidation, message, nil)
}

func NewNotFoundError(what string) *Error {
	return NewError(KindNotFound, "not found: "+what, nil)
}

func NewIndexMismatchError(message string) *Error {
	return NewError(KindIndexMismatch, message, nil)
}

func NewRagRetrievalError(err error) *Error {
	return NewError(KindRagRetrieval, "⚠️ RAG Error: Could not retrieve context. Details: "+err.Error(), err)
}

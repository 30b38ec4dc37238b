package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is the ErrorInfo domain attached to status errors.
const ErrorDomain = "nanopore.tracker.v1.TrackerService"

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds surfaced to callers as errorKind.
const (
	KindExtraction        = "ExtractionError"
	KindValidation        = "ValidationError"
	KindNotFound          = "NotFoundError"
	KindInvalidTransition = "InvalidTransitionError"
	KindLowConfidence     = "LowConfidenceWarning"
	KindInternal          = "InternalError"
)

// Common application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
	ErrDatabase          = errors.New("database error")
	ErrValidation        = errors.New("validation failed")
	ErrExtraction        = errors.New("extraction failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("concurrent modification")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewExtractionError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrExtraction
	} else {
		cause = errors.Join(ErrExtraction, cause)
	}
	return NewAppError(KindExtraction, message, cause)
}

func NewValidationError(message string) *AppError {
	return NewAppError(KindValidation, message, ErrValidation)
}

func NewNotFoundError(what string, id any) *AppError {
	return NewAppError(KindNotFound, fmt.Sprintf("%s %v not found", what, id), ErrNotFound)
}

// InvalidTransitionError names the rejected state pair.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s is not allowed", KindInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Kind classifies err into one of the Kind* constants. nil yields "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return KindInvalidTransition
	}
	var ae *AppError
	if errors.As(err, &ae) {
		switch ae.Code {
		case KindExtraction, KindValidation, KindNotFound, KindInvalidTransition:
			return ae.Code
		}
	}
	switch {
	case errors.Is(err, ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	}
	return KindInternal
}

// ToStatus converts a domain error into a gRPC status error. Errors that already
// carry a status pass through.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	kind := Kind(err)
	if errors.Is(err, context.DeadlineExceeded) {
		return kindStatus(codes.DeadlineExceeded, kind, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return kindStatus(codes.Canceled, kind, err.Error())
	}
	switch kind {
	case KindValidation:
		return InvalidArgumentError(err.Error())
	case KindNotFound:
		return NotFoundError(err.Error())
	case KindInvalidTransition, KindExtraction:
		return kindStatus(codes.FailedPrecondition, kind, err.Error())
	}
	if errors.Is(err, ErrConflict) {
		return kindStatus(codes.Aborted, kind, err.Error())
	}
	return InternalError(err.Error())
}

// kindStatus builds a status error whose ErrorInfo reason is the error kind.
func kindStatus(code codes.Code, kind, message string) error {
	st := status.New(code, message)
	if detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: kind, Domain: ErrorDomain}); err == nil {
		st = detailed
	}
	return st.Err()
}

// StatusKind reads the error kind back out of a status error. It returns "" when
// the error carries no ErrorInfo from this service.
func StatusKind(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return info.GetReason()
		}
	}
	return ""
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return kindStatus(codes.InvalidArgument, KindValidation, message)
}

func NotFoundError(message string) error {
	return kindStatus(codes.NotFound, KindNotFound, message)
}

func InternalError(message string) error {
	return kindStatus(codes.Internal, KindInternal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

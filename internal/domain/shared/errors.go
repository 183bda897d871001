package shared

import "fmt"

// DomainError is a rule violation with a stable machine code. The HTTP layer
// maps codes to statuses; Message is safe to show to the caller.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on Code only, so errors.Is(err, ErrNotFound) holds for
// NotFound("Product not found") too.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinels for errors.Is; build specific messages with the helpers below
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInternal            = NewDomainError("INTERNAL_ERROR", "Internal error")
)

func NotFound(message string) *DomainError {
	return NewDomainError(ErrNotFound.Code, message)
}

func InvalidInput(message string) *DomainError {
	return NewDomainError(ErrInvalidInput.Code, message)
}

// Invalidf builds a rule specific INVALID_<FIELD> error
func Invalidf(field, format string, args ...any) *DomainError {
	return NewDomainError("INVALID_"+field, fmt.Sprintf(format, args...))
}

// Internal hides a failure behind a generic message; log the cause first
func Internal(message string) *DomainError {
	return NewDomainError(ErrInternal.Code, message)
}

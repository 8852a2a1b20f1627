package errors

import (
	stderrors "errors"
	"fmt"
)

// PDFError is the single structured failure produced by every parsing stage.
type PDFError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Offset   int       `json:"offset"`
	Expected string    `json:"expected,omitempty"`
	Context  string    `json:"context,omitempty"`
}

// ErrorType represents the category of a parsing failure
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeOutOfBounds
	ErrorTypeMalformedToken
	ErrorTypeUnresolvedReference
	ErrorTypeUnknownFilter
	ErrorTypePageTreeCorrupt
	ErrorTypeXRefNotFound
	ErrorTypeCatalogInvalid
	ErrorTypeInvalidToken
	ErrorTypeInvalidHeader
	ErrorTypeCanceled
	ErrorTypeFilterFailed
)

// Sentinels for errors.Is matching. Only the Type is compared.
var (
	ErrOutOfBounds         = &PDFError{Type: ErrorTypeOutOfBounds}
	ErrMalformedToken      = &PDFError{Type: ErrorTypeMalformedToken}
	ErrUnresolvedReference = &PDFError{Type: ErrorTypeUnresolvedReference}
	ErrUnknownFilter       = &PDFError{Type: ErrorTypeUnknownFilter}
	ErrPageTreeCorrupt     = &PDFError{Type: ErrorTypePageTreeCorrupt}
	ErrXRefNotFound        = &PDFError{Type: ErrorTypeXRefNotFound}
	ErrCatalogInvalid      = &PDFError{Type: ErrorTypeCatalogInvalid}
	ErrInvalidToken        = &PDFError{Type: ErrorTypeInvalidToken}
	ErrInvalidHeader       = &PDFError{Type: ErrorTypeInvalidHeader}
	ErrCanceled            = &PDFError{Type: ErrorTypeCanceled}
	ErrFilterFailed        = &PDFError{Type: ErrorTypeFilterFailed}
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Type.Description()
	}
	if e.Expected != "" {
		msg = fmt.Sprintf("%s (expected %q)", msg, e.Expected)
	}
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at #%d", msg, e.Offset)
	}
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %q", e.Type.String(), msg, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), msg)
}

// Is reports whether target is a PDFError of the same type.
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeOutOfBounds:
		return "OUT_OF_BOUNDS"
	case ErrorTypeMalformedToken:
		return "MALFORMED_TOKEN"
	case ErrorTypeUnresolvedReference:
		return "UNRESOLVED_REFERENCE"
	case ErrorTypeUnknownFilter:
		return "UNKNOWN_FILTER"
	case ErrorTypePageTreeCorrupt:
		return "PAGE_TREE_CORRUPT"
	case ErrorTypeXRefNotFound:
		return "XREF_NOT_FOUND"
	case ErrorTypeCatalogInvalid:
		return "CATALOG_INVALID"
	case ErrorTypeInvalidToken:
		return "INVALID_TOKEN"
	case ErrorTypeInvalidHeader:
		return "INVALID_HEADER"
	case ErrorTypeCanceled:
		return "CANCELED"
	case ErrorTypeFilterFailed:
		return "FILTER_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Description returns the default human readable message for the type.
func (et ErrorType) Description() string {
	switch et {
	case ErrorTypeOutOfBounds:
		return "cursor moved past end of buffer"
	case ErrorTypeMalformedToken:
		return "malformed token"
	case ErrorTypeUnresolvedReference:
		return "unresolved indirect reference"
	case ErrorTypeUnknownFilter:
		return "unknown stream filter"
	case ErrorTypePageTreeCorrupt:
		return "page tree is corrupt"
	case ErrorTypeXRefNotFound:
		return "startxref not found"
	case ErrorTypeCatalogInvalid:
		return "document catalog is invalid"
	case ErrorTypeInvalidToken:
		return "invalid content stream token"
	case ErrorTypeInvalidHeader:
		return "invalid PDF header"
	case ErrorTypeCanceled:
		return "parsing canceled"
	case ErrorTypeFilterFailed:
		return "stream data could not be decoded"
	default:
		return "unknown error"
	}
}

// IsBacktrackable reports whether the error is an ordinary grammar mismatch
// that an alternative parse may still satisfy. Everything else is fatal to
// the enclosing operation even inside a speculative parse.
func (et ErrorType) IsBacktrackable() bool {
	switch et {
	case ErrorTypeOutOfBounds, ErrorTypeMalformedToken, ErrorTypeInvalidToken:
		return true
	default:
		return false
	}
}

// New creates a PDFError with no offset information
func New(errorType ErrorType, message string) *PDFError {
	return &PDFError{Type: errorType, Message: message, Offset: -1}
}

// Newf creates a PDFError with a formatted message and no offset information
func Newf(errorType ErrorType, format string, args ...any) *PDFError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// NewAt creates a PDFError anchored at a byte offset
func NewAt(errorType ErrorType, offset int, message string) *PDFError {
	return &PDFError{Type: errorType, Message: message, Offset: offset}
}

// Malformed reports a literal or keyword mismatch: what was expected, where,
// and the bytes actually found.
func Malformed(expected string, offset int, found []byte) *PDFError {
	return &PDFError{
		Type:     ErrorTypeMalformedToken,
		Message:  "malformed token",
		Offset:   offset,
		Expected: expected,
		Context:  string(found),
	}
}

// OutOfBounds reports a cursor operation past the end of the buffer.
func OutOfBounds(offset, length int) *PDFError {
	return &PDFError{
		Type:    ErrorTypeOutOfBounds,
		Message: fmt.Sprintf("position exceeds buffer length %d", length),
		Offset:  offset,
	}
}

// InvalidToken reports a content stream position that is neither an
// operand nor a known operator.
func InvalidToken(offset int, nearby []byte) *PDFError {
	return &PDFError{
		Type:    ErrorTypeInvalidToken,
		Message: "no valid operand or operator",
		Offset:  offset,
		Context: string(nearby),
	}
}

// TypeOf extracts the ErrorType of err, unwrapping as needed.
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// IsBacktrackable reports whether err is a grammar mismatch (see ErrorType.IsBacktrackable).
func IsBacktrackable(err error) bool {
	var pe *PDFError
	if !stderrors.As(err, &pe) {
		return false
	}
	return pe.Type.IsBacktrackable()
}

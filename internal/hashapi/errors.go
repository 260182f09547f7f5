package hashapi

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind uint8

const (
	// KindServiceRejection means the service answered and refused the request.
	KindServiceRejection Kind = iota + 1
	// KindTransportFault means no usable answer arrived: the network failed,
	// the call was cancelled or the body could not be decoded.
	KindTransportFault
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindServiceRejection:
		return "service_rejection"
	case KindTransportFault:
		return "transport_fault"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is classification of *Error.
var (
	ErrServiceRejected = errors.New("hashapi: request rejected by service")
	ErrTransport       = errors.New("hashapi: transport fault")
)

// Error is the only error type Client returns.
//
// Message is what the user sees. For a rejection it is the service's own
// message; for a transport fault it is synthesized from Err.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrServiceRejected and ErrTransport by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrServiceRejected:
		return e.Kind == KindServiceRejection
	case ErrTransport:
		return e.Kind == KindTransportFault
	}
	return false
}

// Message returns the user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func rejected(op, message string) *Error {
	if message == "" {
		message = "request rejected by hash service"
	}
	return &Error{Kind: KindServiceRejection, Op: op, Message: message}
}

func transport(op, what string, err error) *Error {
	return &Error{
		Kind:    KindTransportFault,
		Op:      op,
		Message: fmt.Sprintf("%s: %v", what, err),
		Err:     err,
	}
}

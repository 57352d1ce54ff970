// Package errors holds the typed errors shared by the client, the cart
// builder and the console server.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/jafarshop/procurement/internal/locale"
)

// Kind is the closed set of failure categories a caller has to handle.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindTransport
	KindAuth
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "unauthorized"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// HTTPStatus is the status the console server answers with for a kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindTransport, KindServer:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// APIError is a failure translated for the user. Message and Detail are
// locale message keys or text passed through from the API body.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Detail  string
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ValidationError carries per-field messages, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty validation error to collect into.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = message
}

// OrNil returns nil when no field failed, so callers never return a typed nil.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrNotFound is returned when a resource is missing locally or remotely
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrUnauthorized is returned when no valid session exists
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized: " + e.Message
}

// ErrInvalidStateTransition is returned when a workflow step is not allowed
type ErrInvalidStateTransition struct {
	From fmt.Stringer
	To   fmt.Stringer
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// Classify translates any error into an APIError. Already translated
// errors are returned as is.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return &APIError{Kind: KindValidation, Message: firstField(validationErr), Err: err}
	}

	var stateErr *ErrInvalidStateTransition
	if stderrors.As(err, &stateErr) {
		return &APIError{Kind: KindValidation, Status: http.StatusConflict, Message: locale.MsgGenericError, Err: err}
	}

	var notFound *ErrNotFound
	if stderrors.As(err, &notFound) {
		msg := locale.MsgNotFound
		if notFound.Resource == "item" {
			msg = locale.MsgItemNotFound
		}
		return &APIError{Kind: KindNotFound, Message: msg, Err: err}
	}

	var unauthorized *ErrUnauthorized
	if stderrors.As(err, &unauthorized) {
		return &APIError{Kind: KindAuth, Message: locale.MsgSessionExpired, Detail: locale.MsgLoginAgain, Err: err}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindTransport, Message: locale.MsgTimeout, Detail: locale.MsgCheckServer, Err: err}
	}

	var netErr net.Error
	if stderrors.Is(err, context.Canceled) || stderrors.As(err, &netErr) {
		return &APIError{Kind: KindTransport, Message: locale.MsgCannotConnect, Detail: locale.MsgCheckServer, Err: err}
	}

	return &APIError{Kind: KindServer, Message: locale.MsgGenericError, Err: err}
}

// KindOf is a shorthand for Classify(err).Kind; zero for a nil error.
func KindOf(err error) Kind {
	if apiErr := Classify(err); apiErr != nil {
		return apiErr.Kind
	}
	return 0
}

func firstField(e *ValidationError) string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	if len(names) == 0 {
		return locale.MsgGenericError
	}
	sort.Strings(names)
	return e.Fields[names[0]]
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

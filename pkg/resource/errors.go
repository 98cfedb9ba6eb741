package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrIDRequired is returned by operations that need a resource id when
	// the handle has none and the caller supplied none.
	ErrIDRequired = errors.New("resource id required")

	// ErrResourceURL is returned when a handle has neither a self link nor
	// an id and therefore no addressable location.
	ErrResourceURL = errors.New("resource has no resolvable URL")

	// ErrDocument is returned when a handle has no kind to supply the
	// envelope name for decoding.
	ErrDocument = errors.New("resource kind does not supply an envelope name")
)

// InvalidArgumentError reports a constructor input of an unsupported shape.
type InvalidArgumentError struct {
	Type string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid resource info of type %s", e.Type)
}

// NotFoundError reports a 404 from the service during refresh.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// DecodeError reports a refresh response body that could not be decoded into
// the expected envelope.
type DecodeError struct {
	Msg   string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// UnknownError reports an unexpected service status outside the handled set.
// It carries the raw body for diagnosis.
type UnknownError struct {
	Code int
	Body string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ActionError reports a rejected action payload or a failed action response.
type ActionError struct {
	Kind string
	URL  string
	Code int
	Body string
	Msg  string

	Cause error
}

func (e *ActionError) Error() string {
	if e.Msg != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s action: %s: %v", e.Kind, e.Msg, e.Cause)
		}
		return fmt.Sprintf("%s action: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s action to %s failed with status %d: %s", e.Kind, e.URL, e.Code, e.Body)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// PropertyError reports an extension property whose namespace prefix is not
// accepted by the service.
type PropertyError struct {
	Name string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("property %q is not in an accepted namespace", e.Name)
}

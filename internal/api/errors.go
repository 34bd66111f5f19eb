package api

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration failures. They are raised before any network attempt and
// are wrapped in *ConfigError carrying the offending name or value.
var (
	ErrMissingHost              = errors.New("host has not been set")
	ErrMissingAction            = errors.New("action has not been set")
	ErrMissingUser              = errors.New("user has not been set")
	ErrMissingPass              = errors.New("pass has not been set")
	ErrMissingRequiredParameter = errors.New("required parameter has not been set")
	ErrUnsupportedAction        = errors.New("action is not supported")
	ErrDuplicateParameter       = errors.New("parameter has already been set")
	ErrInvalidArgument          = errors.New("invalid argument")
)

// ErrBodyTooLarge is wrapped in a *TransportError when a response body
// exceeds the read limit.
var ErrBodyTooLarge = errors.New("response body too large")

// ErrNoCallYet is returned when asking for a response before any call completed.
var ErrNoCallYet = errors.New("no API call has completed yet")

// ConfigError is a local configuration failure.
type ConfigError struct {
	Err         error
	Name        string
	Reason      string
	Suggestions []string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	switch {
	case errors.Is(e.Err, ErrMissingRequiredParameter):
		fmt.Fprintf(&b, "required parameter with name %q has not been set", e.Name)
	case errors.Is(e.Err, ErrDuplicateParameter):
		fmt.Fprintf(&b, "parameter %q has already been set", e.Name)
	case errors.Is(e.Err, ErrUnsupportedAction):
		fmt.Fprintf(&b, "action %q is currently not supported", e.Name)
	case e.Name != "":
		fmt.Fprintf(&b, "%s: %s", e.Err, e.Name)
	default:
		b.WriteString("failed to compile query URI: ")
		b.WriteString(e.Err.Error())
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(sentinel error, name string) *ConfigError {
	return &ConfigError{Err: sentinel, Name: name}
}

// TransportError is a failure of the HTTP round trip: the request never
// produced a 200 response body.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport failure (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConfigError checks if the error is a local configuration error.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// ResponseError reports a completed call whose body was not a success.
// Gateway.Invoke does not return it; callers use CallOutcome.Err to turn a
// retained outcome into an error.
type ResponseError struct {
	Outcome Outcome
	Body    string
}

func (e *ResponseError) Error() string {
	if e.Outcome == OutcomeError {
		return fmt.Sprintf("API call rejected: %s", e.Body)
	}
	return fmt.Sprintf("unrecognized API response: %q", e.Body)
}

// Err returns nil for a success outcome and a *ResponseError otherwise.
func (o CallOutcome) Err() error {
	if o.Outcome == OutcomeSuccess {
		return nil
	}
	return &ResponseError{Outcome: o.Outcome, Body: o.Body}
}
